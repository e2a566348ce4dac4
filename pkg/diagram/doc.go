// Package diagram converts positioned draw.io diagram documents into
// hierarchical architecture trees.
//
// # Overview
//
// A draw.io document stores a flat list of cells: labeled rectangles
// (vertices) placed in 2-D space, and directed connections (edges) between
// them. Nesting is purely visual — a box drawn inside another box means the
// inner component belongs to the outer one, but the file records no such
// relationship. This package reconstructs the hierarchy from geometry alone.
//
// Processing is a single deterministic pass through three stages:
//
//  1. Decode: parse the mxGraphModel markup into elements and connections
//  2. ResolveParents: find each element's tightest enclosing box
//  3. Assemble: build the root forest and emit the output document
//
// # Containment
//
// Element A contains element B when B's bounding box lies entirely within
// A's on both axes, boundaries included. Among all boxes containing B, the
// one with the smallest area wins ("tightest enclosing box"); area ties
// break to the lexicographically smallest element ID so results are stable
// across runs.
//
// # Usage
//
//	model, err := diagram.Decode(r)
//	if err != nil {
//	    return err // ParseError: malformed markup or no graph model
//	}
//	diagram.ResolveParents(model.Elements)
//	doc := diagram.Assemble(model)
//	data, _ := json.MarshalIndent(doc, "", "  ")
//
// Geometry is a working attribute only: it drives parent resolution and is
// stripped before the document is emitted.
package diagram
