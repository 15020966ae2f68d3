// Package wikitext converts stories to and from the MediaWiki text adventure
// markup.
//
// # Grammar
//
// A story is one #switch over the current scene number, with one case block
// per scene:
//
//	{{#switch:{{Get}}
//	|0 =
//	{{Text adventure
//	|title = Crossroads
//	|text =
//	You stand at a fork.
//
//	{{Text adventure choice|1|Go left.}}
//	{{Text adventure choice|?|Go right.}}
//	}}
//	}}
//
// The |image, |imagesize and |title fields are optional single-line values.
// Everything after |text = up to the block's closing "\n}}" is the scene
// body, with the choice templates embedded at its end. A choice whose target
// is not connected is written with the target "?".
//
// # Endings
//
// The return-to-start choice of an ending scene is never part of the graph.
// [Export] appends it as a final choice targeting scene 0, labeled with the
// scene's start-over text. [Import] reverses this: a non-start scene whose
// last choice targets 0 is an ending and that choice becomes its start-over
// text. A hand-authored scene whose real last choice leads back to the start
// is therefore always read as an ending.
//
// # Block boundaries
//
// The importer ends a case block at the first line that begins with "}}".
// Choice templates always close on their own line, so they never end a
// block early. Nested templates that close on a line of their own do, and
// are not supported inside scene bodies. HTML comments are removed before
// parsing, so commented-out choices or braces have no effect.
//
// # Round trip
//
// For any story without unresolved choices, Import(Export(s)) reproduces
// every scene field and every choice target, and exporting the result again
// yields identical text. The display-only good-ending flag is not encoded in
// the markup; pass the previous story with [WithBaseline] to carry it over.
package wikitext
