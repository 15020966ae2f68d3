// Package story provides the graph model of a branching text adventure.
//
// # Overview
//
// A [Story] is a directed graph of [Scene] values. Each scene owns an ordered
// list of [Choice] values; a choice is linked to its destination by an
// [Edge] whose [Handle] is the choice's position in that list. The model
// keeps a small set of structural invariants that every mutation preserves:
//
//   - Exactly one scene has NumericID 0 (the start scene) and it cannot be deleted
//   - NumericID values are unique, but need not be contiguous
//   - At most one edge leaves any (scene, handle) pair
//   - Edge handles stay within the scene's choice range
//   - Self-loops are never created
//   - Deleting a scene deletes every edge touching it
//
// The implicit "return to start" offered by an ending scene is not an edge.
// It is derived from [Scene.IsEnding] when the story is rendered or exported.
//
// # Edge Reconciliation
//
// Structural edits go through the reconciler methods, which refuse invalid
// requests silently and report whether anything changed:
//
//	s := story.Sample()
//	s.Connect("0", story.ChoiceHandle(0), "2") // replaces the old edge on choice 0
//	s.DeleteChoice("0", 1)                     // drops the edge, renumbers later handles
//	s.DeleteScene("0")                         // false: the start scene is permanent
//
// [Story.DeleteChoice] renumbers edges and shrinks the choice list in one
// call, so no caller can observe handles and choice positions out of step.
//
// # Numeric IDs
//
// New scenes always take [Story.NextNumericID], computed from the current
// model (max + 1), so there is no counter state to keep in sync.
//
// # Concurrency
//
// A Story is not safe for concurrent mutation. The editor package serializes
// access for interactive sessions.
package story
