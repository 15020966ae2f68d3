// Package project stores a story together with its canvas positions and
// metadata, in the JSON format the editor saves and loads.
//
// A project document lists scenes as canvas nodes and connections as canvas
// edges:
//
//	{
//	  "id": "6f1c...", "name": "Crossroads",
//	  "created_at": "2026-01-02T15:04:05Z", "updated_at": "2026-01-02T15:04:05Z",
//	  "nodes": [{"id": "0", "type": "sceneNode", "position": {"x": 0, "y": 130},
//	             "data": {"numericId": 0, "text": "...", "choices": [{"text": "Go left."}]}}],
//	  "edges": [{"id": "e0-choice0-1", "source": "0", "sourceHandle": "choice-0",
//	             "target": "1", "targetHandle": "target"}]
//	}
//
// Both "nodes" and "edges" are required. Decoding rebuilds the story through
// the model's loaders, so a document that breaks a model invariant (missing
// start scene, duplicate numeric IDs, self-loops, two edges on one handle,
// handles past the choice list) is rejected with INVALID_PROJECT.
package project

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/storyweaver/pkg/layout"
	"github.com/matzehuels/storyweaver/pkg/story"
)

// Project is a story being authored.
type Project struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time

	Story     *story.Story
	Positions layout.Positions // Top-left canvas position per scene ID
}

// New creates a project holding only a blank start scene.
func New(name string) *Project {
	now := time.Now().UTC()
	return &Project{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Story:     story.NewWithStart(),
		Positions: layout.Positions{"0": {X: 0, Y: 0}},
	}
}

// Sample creates a project holding [story.Sample] at the editor's default
// positions.
func Sample(name string) *Project {
	p := New(name)
	p.Story = story.Sample()
	p.Positions = layout.Positions{
		"0": {X: 0, Y: 130},
		"1": {X: 320, Y: 30},
		"2": {X: 320, Y: 230},
		"3": {X: 640, Y: 30},
	}
	return p
}

// Touch records a modification.
func (p *Project) Touch() { p.UpdatedAt = time.Now().UTC() }

// Position returns the canvas position of sceneID, or the origin when the
// scene has never been placed.
func (p *Project) Position(sceneID string) layout.Point {
	return p.Positions[sceneID]
}

// Clone returns a deep copy of p.
func (p *Project) Clone() *Project {
	c := *p
	c.Story = p.Story.Clone()
	c.Positions = make(layout.Positions, len(p.Positions))
	for id, pt := range p.Positions {
		c.Positions[id] = pt
	}
	return &c
}

// Prune drops positions of scenes that no longer exist.
func (p *Project) Prune() {
	for id := range p.Positions {
		if _, ok := p.Story.Scene(id); !ok {
			delete(p.Positions, id)
		}
	}
}

// Summary is the listing view of a project.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Scenes    int       `json:"scenes" bson:"scenes"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Summarize returns the listing view of p.
func (p *Project) Summarize() Summary {
	return Summary{
		ID:        p.ID,
		Name:      p.Name,
		Scenes:    p.Story.SceneCount(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
