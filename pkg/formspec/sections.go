// Package formspec defines the value types shared between the form
// composition engine and its render surface: section keys, field entries,
// and hierarchy layers. All values are immutable once constructed; layers
// are combined only through the engine's merge algorithm.
package formspec

// SectionKey identifies one thematic grouping of fields in the rendered form.
type SectionKey string

// Closed set of form sections. Display order is fixed and independent of
// which layers contribute to a section.
const (
	SectionBasicInfo      SectionKey = "basic_info"
	SectionSampling       SectionKey = "sampling"
	SectionAnalysis       SectionKey = "analysis"
	SectionInstrument     SectionKey = "instrument"
	SectionCalibration    SectionKey = "calibration"
	SectionCalculation    SectionKey = "calculation"
	SectionQualityControl SectionKey = "quality_control"
	SectionAdditionalInfo SectionKey = "additional_info"
)

var sectionOrder = []SectionKey{
	SectionBasicInfo,
	SectionSampling,
	SectionAnalysis,
	SectionInstrument,
	SectionCalibration,
	SectionCalculation,
	SectionQualityControl,
	SectionAdditionalInfo,
}

// SectionOrder returns the fixed display order of all form sections.
// The returned slice is a copy; callers may not rely on shared backing.
func SectionOrder() []SectionKey {
	return append([]SectionKey(nil), sectionOrder...)
}

// SectionMeta carries presentation metadata for a section header.
type SectionMeta struct {
	Label string
	Icon  string
}

var sectionMeta = map[SectionKey]SectionMeta{
	SectionBasicInfo:      {Label: "Basic Information", Icon: "info"},
	SectionSampling:       {Label: "Sampling", Icon: "water-drop"},
	SectionAnalysis:       {Label: "Analysis", Icon: "flask"},
	SectionInstrument:     {Label: "Instrument", Icon: "gauge"},
	SectionCalibration:    {Label: "Calibration", Icon: "scale"},
	SectionCalculation:    {Label: "Calculation", Icon: "calculator"},
	SectionQualityControl: {Label: "Quality Control", Icon: "check-badge"},
	SectionAdditionalInfo: {Label: "Additional Information", Icon: "note"},
}

// MetaFor returns the presentation metadata for a section key. Unknown keys
// yield an empty SectionMeta; the closed enumeration above makes that a
// programmer error rather than a runtime condition.
func MetaFor(key SectionKey) SectionMeta {
	return sectionMeta[key]
}
