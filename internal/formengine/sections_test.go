package formengine

import (
	"reflect"
	"testing"

	"oceanmeta/pkg/formspec"
)

func fieldPaths(fields []formspec.FieldEntry) []string {
	paths := make([]string, len(fields))
	for i, f := range fields {
		paths[i] = f.Path
	}
	return paths
}

func TestEveryDefinitionIsRenderable(t *testing.T) {
	for _, name := range DefinitionNames() {
		sections := BuildSections(name)
		if len(sections) == 0 {
			t.Fatalf("definition %q produced no sections", name)
		}
		for _, section := range sections {
			if len(section.Fields) == 0 {
				t.Fatalf("definition %q emitted empty section %q", name, section.Key)
			}
			if section.Label == "" || section.Icon == "" {
				t.Fatalf("definition %q section %q missing metadata", name, section.Key)
			}
		}
	}
}

func TestBuildSectionsUnknownDefinition(t *testing.T) {
	if sections := BuildSections("MysteryVariable"); sections != nil {
		t.Fatalf("expected nil for unknown definition, got %d sections", len(sections))
	}
}

func TestBuildSectionsFixedDisplayOrder(t *testing.T) {
	rank := map[formspec.SectionKey]int{}
	for i, key := range formspec.SectionOrder() {
		rank[key] = i
	}
	for _, name := range DefinitionNames() {
		sections := BuildSections(name)
		for i := 1; i < len(sections); i++ {
			if rank[sections[i-1].Key] >= rank[sections[i].Key] {
				t.Fatalf("definition %q sections out of display order: %q before %q",
					name, sections[i-1].Key, sections[i].Key)
			}
		}
	}
}

func TestBuildSectionsOmitsUncontributedSections(t *testing.T) {
	// The calculated stack has no sampling, analysis, instrument, or
	// calibration contributions; none of those keys may appear.
	sections := BuildSections(DefCalculated)
	for _, section := range sections {
		switch section.Key {
		case formspec.SectionSampling, formspec.SectionAnalysis,
			formspec.SectionInstrument, formspec.SectionCalibration:
			t.Fatalf("calculated variant should not render section %q", section.Key)
		}
	}
}

func TestBuildSectionsNormalizesFields(t *testing.T) {
	for _, section := range BuildSections(DefDiscretePH) {
		for _, f := range section.Fields {
			if f.Span == 0 || f.Input == "" || f.Description == "" {
				t.Fatalf("field %q in section %q not normalized: %+v", f.Path, section.Key, f)
			}
		}
	}
}

func TestBuildSectionsIdempotent(t *testing.T) {
	first := BuildSections(DefDiscretePH)
	second := BuildSections(DefDiscretePH)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated builds diverged")
	}
}

func TestMergeSectionAppendPreservesLayerOrder(t *testing.T) {
	stack := []formspec.HierarchyLayer{
		{Name: "first", Sections: map[formspec.SectionKey]formspec.Contribution{
			formspec.SectionAnalysis: {Fields: []formspec.FieldEntry{formspec.Field("a"), formspec.Field("b")}},
		}},
		{Name: "second", Sections: map[formspec.SectionKey]formspec.Contribution{
			formspec.SectionAnalysis: {Fields: []formspec.FieldEntry{formspec.Field("c")}},
		}},
	}
	got := fieldPaths(MergeSection(formspec.SectionAnalysis, stack))
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("append merge order = %v, want %v", got, want)
	}
}

func TestMergeSectionPrepend(t *testing.T) {
	stack := []formspec.HierarchyLayer{
		{Name: "base", Sections: map[formspec.SectionKey]formspec.Contribution{
			formspec.SectionInstrument: {Fields: []formspec.FieldEntry{formspec.Field("x")}},
		}},
		{Name: "sensor", Sections: map[formspec.SectionKey]formspec.Contribution{
			formspec.SectionInstrument: {
				Position: formspec.Position{Kind: formspec.PositionPrepend},
				Fields:   []formspec.FieldEntry{formspec.Field("p1"), formspec.Field("p2")},
			},
		}},
	}
	got := fieldPaths(MergeSection(formspec.SectionInstrument, stack))
	want := []string{"p1", "p2", "x"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("prepend merge order = %v, want %v", got, want)
	}
}

func TestMergeSectionSameAnchorReversedAdjacency(t *testing.T) {
	base := formspec.HierarchyLayer{Name: "base", Sections: map[formspec.SectionKey]formspec.Contribution{
		formspec.SectionAnalysis: {Fields: []formspec.FieldEntry{formspec.Field("x"), formspec.Field("tail")}},
	}}
	l1 := formspec.HierarchyLayer{Name: "l1", Sections: map[formspec.SectionKey]formspec.Contribution{
		formspec.SectionAnalysis: {
			Position: formspec.AfterField("x"),
			Fields:   []formspec.FieldEntry{formspec.Field("l1a"), formspec.Field("l1b")},
		},
	}}
	l2 := formspec.HierarchyLayer{Name: "l2", Sections: map[formspec.SectionKey]formspec.Contribution{
		formspec.SectionAnalysis: {
			Position: formspec.AfterField("x"),
			Fields:   []formspec.FieldEntry{formspec.Field("l2a")},
		},
	}}
	got := fieldPaths(MergeSection(formspec.SectionAnalysis, []formspec.HierarchyLayer{base, l1, l2}))
	// The layer processed last lands closest to the anchor.
	want := []string{"x", "l2a", "l1a", "l1b", "tail"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("same-anchor merge order = %v, want %v", got, want)
	}
}

func TestMergeSectionMissingAnchorFallsBackToAppend(t *testing.T) {
	base := formspec.HierarchyLayer{Name: "base", Sections: map[formspec.SectionKey]formspec.Contribution{
		formspec.SectionAnalysis: {Fields: []formspec.FieldEntry{formspec.Field("a")}},
	}}
	orphan := formspec.HierarchyLayer{Name: "orphan", Sections: map[formspec.SectionKey]formspec.Contribution{
		formspec.SectionAnalysis: {
			Position: formspec.AfterField("nonexistent"),
			Fields:   []formspec.FieldEntry{formspec.Field("o1"), formspec.Field("o2")},
		},
	}}
	got := fieldPaths(MergeSection(formspec.SectionAnalysis, []formspec.HierarchyLayer{base, orphan}))
	want := []string{"a", "o1", "o2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("missing-anchor merge = %v, want %v", got, want)
	}
}

func TestMergeSectionEmptyContributionIsSkipped(t *testing.T) {
	base := formspec.HierarchyLayer{Name: "base", Sections: map[formspec.SectionKey]formspec.Contribution{
		formspec.SectionAnalysis: {Fields: []formspec.FieldEntry{formspec.Field("a")}},
	}}
	marker := formspec.HierarchyLayer{Name: "marker", Sections: map[formspec.SectionKey]formspec.Contribution{
		formspec.SectionAnalysis: {},
	}}
	got := fieldPaths(MergeSection(formspec.SectionAnalysis, []formspec.HierarchyLayer{base, marker}))
	want := []string{"a"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("empty contribution altered merge: %v, want %v", got, want)
	}
}

func TestMergeSectionDoesNotMutateLayers(t *testing.T) {
	before := make([]formspec.FieldEntry, len(discreteLayer.Sections[formspec.SectionAnalysis].Fields))
	copy(before, discreteLayer.Sections[formspec.SectionAnalysis].Fields)

	for range 3 {
		MergeSection(formspec.SectionAnalysis, layerStacks[DefDiscretePH])
	}

	after := discreteLayer.Sections[formspec.SectionAnalysis].Fields
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("merge mutated stored layer fields: %v -> %v", before, after)
	}
}
