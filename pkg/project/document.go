package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/storyweaver/pkg/errors"
	"github.com/matzehuels/storyweaver/pkg/layout"
	"github.com/matzehuels/storyweaver/pkg/story"
)

// Wire constants of the canvas format.
const (
	NodeType     = "sceneNode"
	TargetHandle = "target"
)

// Document is the serialized form of a project. It is what the JSON files
// and the Mongo store hold.
type Document struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	Nodes     []Node    `json:"nodes" bson:"nodes"`
	Edges     []Edge    `json:"edges" bson:"edges"`
}

// Node is one scene on the canvas.
type Node struct {
	ID       string       `json:"id" bson:"id"`
	Type     string       `json:"type" bson:"type"`
	Position layout.Point `json:"position" bson:"position"`
	Data     SceneData    `json:"data" bson:"data"`
}

// SceneData carries the scene fields of a [Node].
type SceneData struct {
	NumericID     int            `json:"numericId" bson:"numericId"`
	Title         string         `json:"title" bson:"title"`
	Image         string         `json:"image" bson:"image"`
	ImageSize     string         `json:"imagesize" bson:"imagesize"`
	Text          string         `json:"text" bson:"text"`
	Choices       []story.Choice `json:"choices" bson:"choices"`
	IsEnding      bool           `json:"isEnding" bson:"isEnding"`
	IsGoodEnding  bool           `json:"isGoodEnding" bson:"isGoodEnding"`
	StartOverText string         `json:"startOverText" bson:"startOverText"`
}

// Edge is one connection on the canvas. SourceHandle is "choice-<n>", or
// empty for an edge not attached to a choice.
type Edge struct {
	ID           string `json:"id" bson:"id"`
	Source       string `json:"source" bson:"source"`
	SourceHandle string `json:"sourceHandle" bson:"sourceHandle"`
	Target       string `json:"target" bson:"target"`
	TargetHandle string `json:"targetHandle" bson:"targetHandle"`
}

// Document converts p to its serialized form. Nodes are in NumericID order.
func (p *Project) Document() Document {
	scenes := p.Story.SortedScenes()
	edges := p.Story.Edges()
	doc := Document{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Nodes:     make([]Node, len(scenes)),
		Edges:     make([]Edge, len(edges)),
	}
	for i, sc := range scenes {
		choices := sc.Choices
		if choices == nil {
			choices = []story.Choice{}
		}
		doc.Nodes[i] = Node{
			ID:       sc.ID,
			Type:     NodeType,
			Position: p.Position(sc.ID),
			Data: SceneData{
				NumericID:     sc.NumericID,
				Title:         sc.Title,
				Image:         sc.Image,
				ImageSize:     sc.ImageSize,
				Text:          sc.Text,
				Choices:       choices,
				IsEnding:      sc.IsEnding,
				IsGoodEnding:  sc.IsGoodEnding,
				StartOverText: sc.StartOverText,
			},
		}
	}
	for i, e := range edges {
		doc.Edges[i] = Edge{
			ID:           e.ID(),
			Source:       e.Source,
			SourceHandle: e.Handle.String(),
			Target:       e.Target,
			TargetHandle: TargetHandle,
		}
	}
	return doc
}

// FromDocument rebuilds a project from its serialized form and checks every
// model invariant. Errors are coded INVALID_PROJECT.
func FromDocument(doc Document) (*Project, error) {
	s := story.New()
	pos := make(layout.Positions, len(doc.Nodes))
	for _, n := range doc.Nodes {
		sc := story.Scene{
			ID:            n.ID,
			NumericID:     n.Data.NumericID,
			Title:         n.Data.Title,
			Image:         n.Data.Image,
			ImageSize:     n.Data.ImageSize,
			Text:          n.Data.Text,
			Choices:       n.Data.Choices,
			IsEnding:      n.Data.IsEnding,
			IsGoodEnding:  n.Data.IsGoodEnding,
			StartOverText: n.Data.StartOverText,
		}
		if err := s.Insert(sc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidProject, err, "node %q", n.ID)
		}
		pos[n.ID] = n.Position
	}
	for _, e := range doc.Edges {
		h, err := story.ParseHandle(e.SourceHandle)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidProject, err, "edge %q", e.ID)
		}
		if err := s.AddEdge(story.Edge{Source: e.Source, Handle: h, Target: e.Target}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidProject, err, "edge %q", e.ID)
		}
	}
	if err := s.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProject, err, "invalid story")
	}
	return &Project{
		ID:        doc.ID,
		Name:      doc.Name,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
		Story:     s,
		Positions: pos,
	}, nil
}

// =============================================================================
// Encoding
// =============================================================================

// Marshal encodes p as indented JSON.
func Marshal(p *Project) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a project document. Both "nodes" and "edges" must be
// present.
func Unmarshal(data []byte) (*Project, error) {
	var shape struct {
		Nodes json.RawMessage `json:"nodes"`
		Edges json.RawMessage `json:"edges"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProject, err, "decode project")
	}
	if isAbsent(shape.Nodes) {
		return nil, errors.New(errors.ErrCodeInvalidProject, "project has no \"nodes\" array")
	}
	if isAbsent(shape.Edges) {
		return nil, errors.New(errors.ErrCodeInvalidProject, "project has no \"edges\" array")
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProject, err, "decode project")
	}
	return FromDocument(doc)
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// Write encodes p as indented JSON to w.
func Write(w io.Writer, p *Project) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p.Document()); err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	return nil
}

// Read decodes a project document from r. Read does not close r.
func Read(r io.Reader) (*Project, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	return Unmarshal(data)
}

// Load reads the project file at path.
func Load(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Save writes p to path atomically, creating parent directories.
func Save(path string, p *Project) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
