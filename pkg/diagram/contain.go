package diagram

import "slices"

// ResolveParents links every element to its tightest enclosing element,
// populating parent pointers and children slices in place.
//
// For each element the resolver collects every other element whose box
// contains it (boundaries inclusive) and picks the candidate with the
// smallest area. Equal-area candidates break to the lexicographically
// smallest ID, so the assignment is deterministic regardless of map
// iteration order. Elements contained by nothing stay roots.
//
// The all-pairs scan is O(n²) in the element count. Diagrams run tens to
// low hundreds of elements, so a spatial index would not pay for itself.
//
// ResolveParents is idempotent: it clears prior assignments before
// linking, so resolving the same element set twice yields identical
// parentage. There is no error path — every element either gets exactly
// one parent or none.
func ResolveParents(elements map[string]*Element) {
	ids := make([]string, 0, len(elements))
	for id := range elements {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		e := elements[id]
		e.parent = nil
		e.Children = e.Children[:0]
	}

	for _, childID := range ids {
		child := elements[childID]
		if child.Geom == nil {
			continue
		}

		var best *Element
		for _, parentID := range ids {
			if parentID == childID {
				continue
			}
			candidate := elements[parentID]
			if candidate.Geom == nil || !candidate.Geom.Contains(*child.Geom) {
				continue
			}
			// Sorted iteration makes the strict < a smallest-ID tie-break.
			if best == nil || candidate.Geom.Area() < best.Geom.Area() {
				best = candidate
			}
		}

		if best != nil {
			child.parent = best
			best.Children = append(best.Children, child)
		}
	}
}

// Parent returns the element's resolved parent, or nil for roots.
// It is only meaningful after ResolveParents has run.
func (e *Element) Parent() *Element { return e.parent }
