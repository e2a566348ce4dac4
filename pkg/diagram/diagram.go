package diagram

// SchemaVersion identifies the output document schema. Consumers key on
// this field to detect incompatible producers.
const SchemaVersion = "3.0"

// DefaultDiagramName is used when the source document carries no name
// attribute on its diagram element.
const DefaultDiagramName = "Untitled"

// Geometry is the axis-aligned bounding box of a vertex cell.
// Coordinates follow the draw.io convention: origin top-left, x growing
// right and y growing down. Width and height are never negative for a
// decoded element; zero-size boxes are valid.
type Geometry struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Area returns the box area used to rank candidate parents.
func (g Geometry) Area() float64 {
	return g.Width * g.Height
}

// Contains reports whether other lies entirely within g on both axes.
// Shared boundaries count as contained, so a box contains an identical
// copy of itself and any point-size box on its edge.
func (g Geometry) Contains(other Geometry) bool {
	return other.X >= g.X &&
		other.Y >= g.Y &&
		other.X+other.Width <= g.X+g.Width &&
		other.Y+other.Height <= g.Y+g.Height
}

// Element is a labeled rectangular diagram node. After assembly an element
// owns its visually nested elements through Children; Geom is a transient
// aid for parent resolution and is cleared before emission.
//
// An element has at most one parent. Elements without a parent are roots
// of the output forest.
type Element struct {
	ID       string     `json:"id"`
	Label    string     `json:"label"`
	Children []*Element `json:"children"`

	// Geom is only populated between Decode and Assemble.
	Geom *Geometry `json:"-"`

	// parent is maintained by ResolveParents so assembly can find roots
	// without rescanning every children slice.
	parent *Element
}

// Connection is a directed reference between two vertices. Labels are
// denormalized from the endpoint elements when the output document is
// assembled; they carry no structural meaning.
type Connection struct {
	SourceID    string `json:"source_id"`
	SourceLabel string `json:"source_label"`
	TargetID    string `json:"target_id"`
	TargetLabel string `json:"target_label"`
}

// Model is the decoded form of a diagram document: the flat element set
// keyed by cell ID plus the raw connection list. Connection endpoints are
// not yet validated against the element set — that happens at assembly,
// where dangling connections are dropped.
type Model struct {
	Name        string
	Elements    map[string]*Element
	Connections []Connection
}

// Document is the emitted output schema. Field names and nesting are part
// of the contract with downstream consumers.
type Document struct {
	SchemaVersion string       `json:"schema_version"`
	DiagramName   string       `json:"diagram_name"`
	Architecture  []*Element   `json:"architecture"`
	Connections   []Connection `json:"connections"`
}

// Walk calls fn for every element in the tree rooted at e, parents before
// children.
func (e *Element) Walk(fn func(*Element)) {
	fn(e)
	for _, c := range e.Children {
		c.Walk(fn)
	}
}
