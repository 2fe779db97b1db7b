package formspec

// InputType tags how a field should be rendered by the form surface.
type InputType string

// Supported input widgets.
const (
	// InputText is a single-line free text input.
	InputText InputType = "text"
	// InputTextArea is a multi-line text input sized by Rows.
	InputTextArea InputType = "textarea"
	// InputEnumWithCustom renders the schema enum plus a free-text overflow choice.
	InputEnumWithCustom InputType = "enum_custom"
	// InputBoolSelect renders a boolean as a yes/no select.
	InputBoolSelect InputType = "bool_select"
	// InputGatedValue renders a yes/no gate (labelled GateLabel) that reveals
	// the value input only on yes.
	InputGatedValue InputType = "gated_value"
)

// DescriptionMode controls where a field's schema description is shown.
type DescriptionMode string

// Description display modes.
const (
	DescriptionHidden DescriptionMode = "hidden"
	DescriptionPopup  DescriptionMode = "popup"
	DescriptionInline DescriptionMode = "inline"
)

// Default presentation attributes applied by Normalize.
const (
	// DefaultSpan is the full grid width.
	DefaultSpan = 12
)

// FieldEntry describes one form field contributed by a hierarchy layer.
// Path addresses a possibly-nested schema property using dot notation.
// The zero values of the presentation attributes mean "use the default";
// Normalize resolves them so the render surface never branches on absence.
type FieldEntry struct {
	Path        string          `json:"path"`
	Span        int             `json:"span"`
	Input       InputType       `json:"input"`
	Description DescriptionMode `json:"description"`
	Placeholder string          `json:"placeholder,omitempty"`
	Rows        int             `json:"rows,omitempty"`
	GateLabel   string          `json:"gate_label,omitempty"`
	BreakAfter  bool            `json:"break_after,omitempty"`
}

// Field builds an entry with default presentation from a bare field path,
// the shorthand most layer contributions use.
func Field(path string) FieldEntry {
	return FieldEntry{Path: path}
}

// Normalize fills every unset presentation attribute with its documented
// default: full width, plain text input, no description popup. Rows defaults
// to 3 for textarea inputs and stays 0 otherwise.
func Normalize(f FieldEntry) FieldEntry {
	if f.Span == 0 {
		f.Span = DefaultSpan
	}
	if f.Input == "" {
		f.Input = InputText
	}
	if f.Description == "" {
		f.Description = DescriptionHidden
	}
	if f.Input == InputTextArea && f.Rows == 0 {
		f.Rows = 3
	}
	return f
}
