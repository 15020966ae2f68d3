// Package render draws a story graph as a Graphviz diagram.
//
// [ToDOT] turns a story into DOT source: one rounded box per scene labelled
// with its numeric id and title and filled by its [story.Kind], one arrow per
// connected choice labelled with the choice number, and a dashed arrow from
// every ending back to the start scene. The return arrows only exist in the
// drawing; the story never stores them as edges.
//
//	dot := render.ToDOT(s, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// [ToPDF] and [ToPNG] convert the SVG with the external rsvg-convert tool
// (librsvg).
package render
