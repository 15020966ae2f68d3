package wikitext

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/storyweaver/pkg/errors"
	"github.com/matzehuels/storyweaver/pkg/story"
)

// ErrNoScenes is returned by [Import] when the input contains no case block.
var ErrNoScenes = errors.New(errors.ErrCodeNoScenes,
	"no valid scenes found; make sure this is a text adventure wikitext")

var (
	commentRe = regexp.MustCompile(`<!--[\s\S]*?-->`)
	caseRe    = regexp.MustCompile(`(?i)\|(\d+)\s*=\s*\n\{\{Text adventure([\s\S]*?)\n\}\}`)

	imageRe     = fieldRe("image")
	imageSizeRe = fieldRe("imagesize")
	titleRe     = fieldRe("title")
	textRe      = regexp.MustCompile(`(?i)\|text\s*=\s*\n?([\s\S]*)`)

	choiceRe      = regexp.MustCompile(`(?i)\{\{Text adventure choice\|(\d+|\?)\|(.*?)\}\}`)
	choiceStripRe = regexp.MustCompile(`(?i)\n*\{\{Text adventure choice\|(?:\d+|\?)\|.*?\}\}`)
)

// fieldRe matches a single-line field. The value stops at the end of the
// line, so an empty value never reaches into the next one.
func fieldRe(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\|` + name + `[ \t]*=[ \t]*(.*)`)
}

// Warning is a non-fatal problem found while importing.
type Warning struct {
	Scene   int    `json:"scene"` // NumericID of the offending case block, -1 when not tied to one
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Scene < 0 {
		return w.Message
	}
	return fmt.Sprintf("scene %d: %s", w.Scene, w.Message)
}

// Dangling is a choice whose written target names no imported scene. The
// choice is kept without an edge.
type Dangling struct {
	Scene  int `json:"scene"`  // NumericID of the scene owning the choice
	Choice int `json:"choice"` // Choice index
	Target int `json:"target"` // Target as written
}

// Report collects what [Import] recovered from.
type Report struct {
	Warnings []Warning  `json:"warnings"`
	Dangling []Dangling `json:"dangling"`
}

func (r *Report) warn(scene int, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{Scene: scene, Message: fmt.Sprintf(format, args...)})
}

// Result is the outcome of a successful import.
type Result struct {
	Story  *story.Story
	Report Report
}

// ImportOption customizes [Import].
type ImportOption func(*importConfig)

type importConfig struct {
	baseline *story.Story
}

// WithBaseline carries the good-ending flag over from prev: every imported
// ending whose numeric ID was a good ending in prev stays one.
func WithBaseline(prev *story.Story) ImportOption {
	return func(c *importConfig) { c.baseline = prev }
}

// parsedChoice is a choice as written. target is -1 for "?".
type parsedChoice struct {
	target int
	text   string
}

type parsedScene struct {
	scene   story.Scene
	choices []parsedChoice
}

// Import parses markup into a new story.
//
// Malformed or duplicate case blocks are skipped and reported; only input
// without any case block fails, with [ErrNoScenes]. Imported scene IDs are
// the decimal numeric IDs. Positions are not part of the markup.
func Import(text string, opts ...ImportOption) (*Result, error) {
	var cfg importConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	text = commentRe.ReplaceAllString(text, "")

	var (
		report Report
		parsed []parsedScene
		seen   = make(map[int]bool)
	)
	for _, m := range caseRe.FindAllStringSubmatch(text, -1) {
		numericID, err := strconv.Atoi(m[1])
		if err != nil {
			report.warn(-1, "case %s: scene number out of range, block skipped", m[1])
			continue
		}
		if seen[numericID] {
			report.warn(numericID, "duplicate case block skipped")
			continue
		}
		seen[numericID] = true
		parsed = append(parsed, parseBlock(numericID, m[2], &report))
	}
	if len(parsed) == 0 {
		return nil, ErrNoScenes
	}

	s := story.New()
	if !seen[0] {
		report.warn(-1, "no start scene (case 0); an empty one was added")
		_ = s.Insert(story.Scene{ID: "0", NumericID: 0})
	}
	for _, p := range parsed {
		sc := p.scene
		if sc.IsEnding && cfg.baseline != nil {
			if prev, ok := cfg.baseline.SceneByNumericID(sc.NumericID); ok && prev.IsEnding {
				sc.IsGoodEnding = prev.IsGoodEnding
			}
		}
		if err := s.Insert(sc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "insert scene %d", sc.NumericID)
		}
	}

	for _, p := range parsed {
		src := p.scene.NumericID
		for i, c := range p.choices {
			switch {
			case c.target < 0:
				continue
			case c.target == src:
				report.warn(src, "choice %d links to its own scene, left unconnected", i)
				continue
			case !seen[c.target]:
				report.warn(src, "choice %d links to missing scene %d, left unconnected", i, c.target)
				report.Dangling = append(report.Dangling, Dangling{Scene: src, Choice: i, Target: c.target})
				continue
			}
			e := story.Edge{
				Source: p.scene.ID,
				Handle: story.ChoiceHandle(i),
				Target: strconv.Itoa(c.target),
			}
			if err := s.AddEdge(e); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect scene %d", src)
			}
		}
	}
	return &Result{Story: s, Report: report}, nil
}

// parseBlock extracts one scene from the body of a case block.
func parseBlock(numericID int, body string, report *Report) parsedScene {
	sc := story.Scene{
		ID:        strconv.Itoa(numericID),
		NumericID: numericID,
		Image:     firstField(imageRe, body),
		ImageSize: firstField(imageSizeRe, body),
		Title:     firstField(titleRe, body),
	}

	var raw string
	if m := textRe.FindStringSubmatch(body); m != nil {
		raw = m[1]
	}

	var choices []parsedChoice
	for _, m := range choiceRe.FindAllStringSubmatch(raw, -1) {
		target := -1
		if m[1] != Unresolved {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				report.warn(numericID, "choice target %s out of range, left unconnected", m[1])
			} else {
				target = n
			}
		}
		choices = append(choices, parsedChoice{target: target, text: m[2]})
	}
	sc.Text = strings.TrimSpace(choiceStripRe.ReplaceAllString(raw, ""))

	if numericID != 0 && len(choices) > 0 && choices[len(choices)-1].target == 0 {
		last := choices[len(choices)-1]
		sc.IsEnding = true
		sc.StartOverText = last.text
		choices = choices[:len(choices)-1]
	}

	sc.Choices = make([]story.Choice, len(choices))
	for i, c := range choices {
		sc.Choices[i] = story.Choice{Text: c.text}
	}
	return parsedScene{scene: sc, choices: choices}
}

func firstField(re *regexp.Regexp, body string) string {
	m := re.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
