package formspec

// PositionKind selects the insertion policy of a layer contribution.
type PositionKind string

// Insertion policies. The zero value of Position means append.
const (
	PositionAppend  PositionKind = "append"
	PositionPrepend PositionKind = "prepend"
	PositionAfter   PositionKind = "after"
)

// Position describes where a contribution's fields land in the section's
// accumulated field list. After names the anchor field path when
// Kind == PositionAfter; an anchor missing from the accumulated list
// degrades to append.
type Position struct {
	Kind  PositionKind
	After string
}

// AfterField is shorthand for an after-anchor position.
func AfterField(path string) Position {
	return Position{Kind: PositionAfter, After: path}
}

// Contribution is one layer's ordered field list for a single section.
// An empty Fields slice is treated as "no contribution" by the merge
// algorithm: some layers are present in a stack purely to signal
// applicability for one variant without adding fields everywhere.
type Contribution struct {
	Fields   []FieldEntry
	Position Position
}

// HierarchyLayer is a named, reusable bundle of per-section field
// contributions mirroring one level of the source ontology's class
// hierarchy (shared base, sampling mode, variable family). The name exists
// for diagnostics only. Layers never mutate each other; the engine combines
// them exclusively by building fresh merged lists.
type HierarchyLayer struct {
	Name     string
	Sections map[SectionKey]Contribution
}
