package diagram

import "slices"

// Assemble builds the output document from a resolved model.
//
// Roots are the elements that no other element claims as a child, ordered
// by ID for stable output. Geometry is stripped from every node before
// emission — it is a resolution aid, not part of the published schema.
//
// Connections survive only when both endpoints refer to known elements;
// the rest reference decorative cells and are dropped without error.
// Surviving connections keep their input order and pick up the endpoint
// labels at this point.
func Assemble(m *Model) *Document {
	roots := make([]*Element, 0, len(m.Elements))
	for _, e := range m.Elements {
		if e.parent == nil {
			roots = append(roots, e)
		}
	}
	slices.SortFunc(roots, func(a, b *Element) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})

	for _, root := range roots {
		root.Walk(func(e *Element) { e.Geom = nil })
	}

	connections := make([]Connection, 0, len(m.Connections))
	for _, c := range m.Connections {
		src, okSrc := m.Elements[c.SourceID]
		dst, okDst := m.Elements[c.TargetID]
		if !okSrc || !okDst {
			continue
		}
		connections = append(connections, Connection{
			SourceID:    c.SourceID,
			SourceLabel: src.Label,
			TargetID:    c.TargetID,
			TargetLabel: dst.Label,
		})
	}

	name := m.Name
	if name == "" {
		name = DefaultDiagramName
	}

	return &Document{
		SchemaVersion: SchemaVersion,
		DiagramName:   name,
		Architecture:  roots,
		Connections:   connections,
	}
}

// Convert runs the full decode → resolve → assemble sequence on a raw
// document. It is the one-call form of the pipeline for callers that do
// not need per-stage hooks or timing.
func Convert(data []byte) (*Document, error) {
	m, err := DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	ResolveParents(m.Elements)
	return Assemble(m), nil
}
