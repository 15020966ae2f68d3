package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/storyweaver/pkg/story"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success, good endings
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors, bad endings
	colorBlue   = lipgloss.Color("75")  // Light blue - start scene
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(14)
)

// kindStyles colours scene labels the way the canvas fills scene nodes.
var kindStyles = map[story.Kind]lipgloss.Style{
	story.KindStart:      lipgloss.NewStyle().Foreground(colorBlue),
	story.KindGoodEnding: lipgloss.NewStyle().Foreground(colorGreen),
	story.KindBadEnding:  lipgloss.NewStyle().Foreground(colorRed),
	story.KindRegular:    lipgloss.NewStyle().Foreground(colorWhite),
}

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints story statistics on one line, e.g.
// "4 scenes · 3 edges · 2 endings".
func printStats(s *story.Story) {
	endings, unresolved := 0, 0
	for _, sc := range s.Scenes() {
		if sc.IsEnding {
			endings++
		}
		for i := range sc.Choices {
			if _, ok := s.ChoiceTarget(sc.ID, i); !ok {
				unresolved++
			}
		}
	}

	parts := []string{
		fmt.Sprintf("%d scenes", s.SceneCount()),
		fmt.Sprintf("%d edges", s.EdgeCount()),
		fmt.Sprintf("%d endings", endings),
	}
	if unresolved > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d unresolved", unresolved)))
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// sceneLabel renders "#<n> <title>" coloured by the scene's kind.
func sceneLabel(sc *story.Scene) string {
	l := fmt.Sprintf("#%d", sc.NumericID)
	if sc.Title != "" {
		l += " " + sc.Title
	}
	return kindStyles[sc.Kind()].Render(l)
}
