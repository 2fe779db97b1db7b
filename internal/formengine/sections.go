package formengine

import "oceanmeta/pkg/formspec"

// Section is one rendered accordion group: the section key, its
// presentation metadata, and the merged ordered field list. This shape,
// together with the normalized formspec.FieldEntry, is the whole contract
// the render surface needs; it never inspects layers or stacks directly.
type Section struct {
	Key    formspec.SectionKey  `json:"key"`
	Label  string               `json:"label"`
	Icon   string               `json:"icon"`
	Fields []formspec.FieldEntry `json:"fields"`
}

// BuildSections composes the ordered, sectioned field list for a resolved
// definition. Sections appear in fixed display order; sections no layer
// contributed to are omitted entirely rather than returned empty. An
// unknown definition yields nil.
func BuildSections(name DefinitionName) []Section {
	stack, ok := layerStacks[name]
	if !ok {
		return nil
	}
	var out []Section
	for _, key := range formspec.SectionOrder() {
		fields := MergeSection(key, stack)
		if len(fields) == 0 {
			continue
		}
		meta := formspec.MetaFor(key)
		out = append(out, Section{Key: key, Label: meta.Label, Icon: meta.Icon, Fields: fields})
	}
	return out
}

// MergeSection merges every layer's contribution for one section, in stack
// order, into a fresh normalized field list. The stored layer slices are
// never modified.
//
// Policies: a missing or empty contribution is a no-op; a bare contribution
// appends; prepend places fields before everything accumulated so far;
// after-anchor splices fields immediately behind the first accumulated
// entry whose path equals the anchor, falling back to append when the
// anchor is absent. Because every after-anchor insertion lands immediately
// behind the anchor, later layers targeting the same anchor end up closer
// to it than earlier ones; downstream consumers rely on exactly that order.
func MergeSection(key formspec.SectionKey, stack []formspec.HierarchyLayer) []formspec.FieldEntry {
	var merged []formspec.FieldEntry
	for _, layer := range stack {
		contrib, ok := layer.Sections[key]
		if !ok || len(contrib.Fields) == 0 {
			continue
		}
		fields := make([]formspec.FieldEntry, len(contrib.Fields))
		for i, f := range contrib.Fields {
			fields[i] = formspec.Normalize(f)
		}
		switch contrib.Position.Kind {
		case formspec.PositionPrepend:
			next := make([]formspec.FieldEntry, 0, len(fields)+len(merged))
			next = append(next, fields...)
			next = append(next, merged...)
			merged = next
		case formspec.PositionAfter:
			merged = spliceAfter(merged, fields, contrib.Position.After)
		default:
			merged = append(merged, fields...)
		}
	}
	return merged
}

func spliceAfter(merged, fields []formspec.FieldEntry, anchor string) []formspec.FieldEntry {
	idx := -1
	for i, f := range merged {
		if f.Path == anchor {
			idx = i
			break
		}
	}
	if idx < 0 {
		return append(merged, fields...)
	}
	next := make([]formspec.FieldEntry, 0, len(merged)+len(fields))
	next = append(next, merged[:idx+1]...)
	next = append(next, fields...)
	next = append(next, merged[idx+1:]...)
	return next
}
