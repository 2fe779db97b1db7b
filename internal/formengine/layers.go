package formengine

import "oceanmeta/pkg/formspec"

// The layer registry. Each layer is one level of the ontology's class
// hierarchy; stacks.go assembles them per resolved definition. Layers are
// package-level constants in spirit: nothing may mutate them after init.

var baseLayer = formspec.HierarchyLayer{
	Name: "variable_base",
	Sections: map[formspec.SectionKey]formspec.Contribution{
		formspec.SectionBasicInfo: {Fields: []formspec.FieldEntry{
			{Path: "dataset_variable_name", Span: 6, Description: formspec.DescriptionPopup, Placeholder: "e.g. pH_T_measured"},
			{Path: "full_variable_name", Span: 6, Description: formspec.DescriptionPopup},
			formspec.Field("observation_type"),
			{Path: "unit", Span: 4},
			{Path: "manipulation_method", Input: formspec.InputEnumWithCustom, BreakAfter: true},
			{Path: "detailed_information", Input: formspec.InputTextArea, Rows: 4},
		}},
		formspec.SectionQualityControl: {Fields: []formspec.FieldEntry{
			{Path: "quality_flag_scheme", Input: formspec.InputEnumWithCustom},
			formspec.Field("quality_control_method"),
			{Path: "researcher_name", Span: 6},
			{Path: "researcher_institution", Span: 6},
		}},
		formspec.SectionAdditionalInfo: {Fields: []formspec.FieldEntry{
			{Path: "comments", Input: formspec.InputTextArea},
		}},
	},
}

var discreteLayer = formspec.HierarchyLayer{
	Name: "sampling_discrete",
	Sections: map[formspec.SectionKey]formspec.Contribution{
		formspec.SectionSampling: {Fields: []formspec.FieldEntry{
			{Path: "sampling_instrument", Input: formspec.InputEnumWithCustom},
			formspec.Field("sample_collection_method"),
			{Path: "sample_container", Span: 6},
			{Path: "sample_volume", Span: 6},
			{Path: "poison.poisoned", Input: formspec.InputGatedValue, GateLabel: "Were samples poisoned?"},
			{Path: "poison.poison_name", Span: 6},
			{Path: "poison.poison_volume", Span: 6},
			formspec.Field("replicate_information"),
		}},
		formspec.SectionAnalysis: {Fields: []formspec.FieldEntry{
			formspec.Field("analysis_method"),
			formspec.Field("analyzing_instrument"),
			{Path: "detection_limit", Span: 4},
			{Path: "analysis_uncertainty", Span: 4},
			{Path: "method_reference", Span: 4},
		}},
		formspec.SectionCalibration: {Fields: []formspec.FieldEntry{
			formspec.Field("standardization.technique"),
			{Path: "standardization.frequency", Span: 6},
			{Path: "crm.manufacturer", Span: 6, Description: formspec.DescriptionPopup},
			{Path: "crm.batch_number", Span: 6},
		}},
	},
}

var continuousLayer = formspec.HierarchyLayer{
	Name: "sampling_continuous",
	Sections: map[formspec.SectionKey]formspec.Contribution{
		formspec.SectionSampling: {Fields: []formspec.FieldEntry{
			{Path: "sampling_frequency", Span: 6},
			{Path: "sensor_depth", Span: 6},
		}},
		formspec.SectionInstrument: {
			Position: formspec.Position{Kind: formspec.PositionPrepend},
			Fields: []formspec.FieldEntry{
				{Path: "sensor.manufacturer", Span: 6},
				{Path: "sensor.model", Span: 6},
				{Path: "sensor.resolution", Span: 6},
				{Path: "sensor.precision", Span: 6},
			},
		},
		formspec.SectionCalibration: {Fields: []formspec.FieldEntry{
			formspec.Field("calibration_method"),
			{Path: "calibration_frequency", Span: 6},
			{Path: "last_calibration_date", Span: 6},
		}},
		formspec.SectionQualityControl: {
			Position: formspec.AfterField("quality_control_method"),
			Fields: []formspec.FieldEntry{
				{Path: "sensor_drift_correction", Input: formspec.InputGatedValue, GateLabel: "Was sensor drift corrected?"},
			},
		},
	},
}

var phLayer = formspec.HierarchyLayer{
	Name: "family_ph",
	Sections: map[formspec.SectionKey]formspec.Contribution{
		formspec.SectionAnalysis: {
			Position: formspec.AfterField("analysis_method"),
			Fields: []formspec.FieldEntry{
				{Path: "ph_scale", Input: formspec.InputEnumWithCustom, Span: 6},
				{Path: "measurement_temperature", Span: 6},
			},
		},
		// Anchor exists only in discrete stacks; continuous pH degrades to append.
		formspec.SectionCalibration: {
			Position: formspec.AfterField("standardization.technique"),
			Fields: []formspec.FieldEntry{
				formspec.Field("ph_standards"),
				formspec.Field("temperature_correction_method"),
			},
		},
		formspec.SectionQualityControl: {
			Position: formspec.AfterField("quality_control_method"),
			Fields: []formspec.FieldEntry{
				{Path: "in_situ_comparison", Input: formspec.InputGatedValue, GateLabel: "Compared against in situ measurements?"},
			},
		},
	},
}

var taLayer = formspec.HierarchyLayer{
	Name: "family_ta",
	Sections: map[formspec.SectionKey]formspec.Contribution{
		formspec.SectionAnalysis: {
			Position: formspec.AfterField("analysis_method"),
			Fields: []formspec.FieldEntry{
				{Path: "titration_type", Span: 6},
				{Path: "acid_concentration", Span: 6},
			},
		},
		formspec.SectionCalibration: {
			Position: formspec.AfterField("crm.batch_number"),
			Fields: []formspec.FieldEntry{
				formspec.Field("crm.traceability"),
			},
		},
	},
}

var dicLayer = formspec.HierarchyLayer{
	Name: "family_dic",
	Sections: map[formspec.SectionKey]formspec.Contribution{
		formspec.SectionAnalysis: {
			Position: formspec.AfterField("analysis_method"),
			Fields: []formspec.FieldEntry{
				formspec.Field("acidification_method"),
				{Path: "co2_extraction_efficiency", Span: 6},
			},
		},
	},
}

var co2Layer = formspec.HierarchyLayer{
	Name: "family_co2",
	Sections: map[formspec.SectionKey]formspec.Contribution{
		formspec.SectionInstrument: {Fields: []formspec.FieldEntry{
			{Path: "equilibrator_type", Span: 6},
			{Path: "drying_method", Span: 6},
			formspec.Field("standard_gas_traceability"),
		}},
		formspec.SectionAnalysis: {
			Position: formspec.AfterField("analysis_method"),
			Fields: []formspec.FieldEntry{
				{Path: "co2_reporting_temperature", Span: 6},
			},
		},
	},
}

var oxygenLayer = formspec.HierarchyLayer{
	Name: "family_oxygen",
	Sections: map[formspec.SectionKey]formspec.Contribution{
		formspec.SectionAnalysis: {
			Position: formspec.AfterField("analysis_method"),
			Fields: []formspec.FieldEntry{
				formspec.Field("oxygen_determination_method"),
			},
		},
	},
}

var nutrientLayer = formspec.HierarchyLayer{
	Name: "family_nutrient",
	Sections: map[formspec.SectionKey]formspec.Contribution{
		formspec.SectionSampling: {Fields: []formspec.FieldEntry{
			{Path: "filtration_method", Span: 6},
			{Path: "filter_pore_size", Span: 6},
		}},
		formspec.SectionAnalysis: {
			Position: formspec.AfterField("analysis_method"),
			Fields: []formspec.FieldEntry{
				{Path: "detection_wavelength", Span: 6},
			},
		},
	},
}

var sedimentLayer = formspec.HierarchyLayer{
	Name: "family_sediment",
	Sections: map[formspec.SectionKey]formspec.Contribution{
		formspec.SectionSampling: {
			Position: formspec.Position{Kind: formspec.PositionPrepend},
			Fields: []formspec.FieldEntry{
				{Path: "core_collection_method", Span: 6},
				{Path: "core_depth", Span: 6},
			},
		},
		formspec.SectionAnalysis: {
			Position: formspec.AfterField("analysis_method"),
			Fields: []formspec.FieldEntry{
				{Path: "sediment_fraction", Span: 6},
				{Path: "drying_temperature", Span: 6},
			},
		},
	},
}

var hplcLayer = formspec.HierarchyLayer{
	Name: "family_hplc",
	Sections: map[formspec.SectionKey]formspec.Contribution{
		formspec.SectionAnalysis: {
			Position: formspec.AfterField("analysis_method"),
			Fields: []formspec.FieldEntry{
				formspec.Field("hplc_column"),
				formspec.Field("solvent_gradient"),
				formspec.Field("pigment_standards"),
			},
		},
		formspec.SectionInstrument: {Fields: []formspec.FieldEntry{
			formspec.Field("hplc_system"),
		}},
	},
}

var calculatedLayer = formspec.HierarchyLayer{
	Name: "genesis_calculated",
	Sections: map[formspec.SectionKey]formspec.Contribution{
		formspec.SectionCalculation: {Fields: []formspec.FieldEntry{
			{Path: "calculation_method", Input: formspec.InputTextArea, Rows: 4},
			formspec.Field("calculation_inputs"),
			{Path: "dissociation_constants", Input: formspec.InputEnumWithCustom, Span: 6},
			{Path: "uncertainty_estimate", Span: 6},
		}},
	},
}

var nonMeasuredLayer = formspec.HierarchyLayer{
	Name: "family_non_measured",
	Sections: map[formspec.SectionKey]formspec.Contribution{
		formspec.SectionBasicInfo: {
			Position: formspec.AfterField("full_variable_name"),
			Fields: []formspec.FieldEntry{
				{Path: "definition", Input: formspec.InputTextArea},
			},
		},
	},
}

// genericLayer marks the catch-all family. Its empty analysis contribution
// signals applicability without adding fields and must merge as a no-op.
var genericLayer = formspec.HierarchyLayer{
	Name: "family_generic",
	Sections: map[formspec.SectionKey]formspec.Contribution{
		formspec.SectionAnalysis: {},
	},
}
