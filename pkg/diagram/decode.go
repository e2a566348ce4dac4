package diagram

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"
)

// ErrNoGraphModel is returned (wrapped in a ParseError) when the document
// is well-formed markup but contains no mxGraphModel root container.
var ErrNoGraphModel = errors.New("no mxGraphModel root container")

// ParseError reports a diagram document that could not be decoded. It is
// terminal for that document: no partial model is produced.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "parse diagram: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// brReplacer collapses embedded line-break markup inside labels to a
// single space. draw.io stores labels as HTML fragments, so all common
// <br> spellings appear in the wild.
var brReplacer = strings.NewReplacer("<br>", " ", "<br/>", " ", "<br />", " ")

// xmlNode is a generic markup element. Decoding into a free-form tree lets
// the graph model container be found at any depth, matching documents that
// wrap it in <mxfile><diagram>...</diagram></mxfile> as well as those whose
// root element is the mxGraphModel itself.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []xmlNode  `xml:",any"`
}

func (n *xmlNode) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// find returns the first descendant-or-self element with the given local
// name, in document order.
func (n *xmlNode) find(name string) *xmlNode {
	if n.XMLName.Local == name {
		return n
	}
	for i := range n.Children {
		if found := n.Children[i].find(name); found != nil {
			return found
		}
	}
	return nil
}

// Decode parses a draw.io diagram document from r.
//
// A cell becomes an Element only when it is flagged as a vertex, carries a
// non-empty label, and has fully numeric geometry. Cells failing any of
// these checks are skipped silently — they are decoration, not structure.
// A cell flagged as an edge becomes a Connection with its endpoint
// references kept as-is; endpoint validation is deferred to Assemble.
//
// Decode returns a *ParseError when the markup is malformed or when the
// document lacks an mxGraphModel container. Both are all-or-nothing: no
// model is returned alongside the error.
func Decode(r io.Reader) (*Model, error) {
	var root xmlNode
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, &ParseError{Err: err}
	}

	graphModel := root.find("mxGraphModel")
	if graphModel == nil {
		return nil, &ParseError{Err: ErrNoGraphModel}
	}
	container := (*xmlNode)(nil)
	for i := range graphModel.Children {
		if graphModel.Children[i].XMLName.Local == "root" {
			container = &graphModel.Children[i]
			break
		}
	}
	if container == nil {
		return nil, &ParseError{Err: ErrNoGraphModel}
	}

	m := &Model{
		Name:     diagramName(&root),
		Elements: make(map[string]*Element),
	}

	for i := range container.Children {
		cell := &container.Children[i]
		if cell.XMLName.Local != "mxCell" {
			continue
		}
		if v, _ := cell.attr("vertex"); v == "1" {
			decodeVertex(cell, m)
			continue
		}
		if e, _ := cell.attr("edge"); e == "1" {
			src, _ := cell.attr("source")
			dst, _ := cell.attr("target")
			m.Connections = append(m.Connections, Connection{SourceID: src, TargetID: dst})
		}
	}

	return m, nil
}

// DecodeBytes is a convenience wrapper around Decode for in-memory documents.
func DecodeBytes(data []byte) (*Model, error) {
	return Decode(bytes.NewReader(data))
}

// decodeVertex adds cell to m if it qualifies as an Element.
func decodeVertex(cell *xmlNode, m *Model) {
	id, ok := cell.attr("id")
	if !ok || id == "" {
		return
	}
	label := NormalizeLabel(firstAttr(cell, "value"))
	if label == "" {
		return
	}
	geom, ok := decodeGeometry(cell)
	if !ok {
		return
	}
	m.Elements[id] = &Element{
		ID:       id,
		Label:    label,
		Children: []*Element{},
		Geom:     &geom,
	}
}

// decodeGeometry extracts the bounding box from the cell's mxGeometry
// child. Missing coordinates default to zero; a missing child, a
// non-numeric value, or a negative extent disqualifies the cell.
func decodeGeometry(cell *xmlNode) (Geometry, bool) {
	var geo *xmlNode
	for i := range cell.Children {
		if cell.Children[i].XMLName.Local == "mxGeometry" {
			geo = &cell.Children[i]
			break
		}
	}
	if geo == nil {
		return Geometry{}, false
	}

	vals := make([]float64, 4)
	for i, name := range []string{"x", "y", "width", "height"} {
		raw, ok := geo.attr(name)
		if !ok || raw == "" {
			continue // absent coordinate defaults to 0
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Geometry{}, false
		}
		vals[i] = f
	}
	g := Geometry{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}
	if g.Width < 0 || g.Height < 0 {
		return Geometry{}, false
	}
	return g, true
}

// NormalizeLabel collapses embedded line-break markup to single spaces and
// trims surrounding whitespace. No further text processing is applied.
func NormalizeLabel(raw string) string {
	return strings.TrimSpace(brReplacer.Replace(raw))
}

// diagramName returns the name attribute of the first diagram element, or
// DefaultDiagramName when the document provides none.
func diagramName(root *xmlNode) string {
	d := root.find("diagram")
	if d == nil {
		return DefaultDiagramName
	}
	name, ok := d.attr("name")
	if !ok || name == "" {
		return DefaultDiagramName
	}
	return name
}

func firstAttr(n *xmlNode, name string) string {
	v, _ := n.attr(name)
	return v
}
