package formengine

import "strings"

// The resolver maps the three user-facing discriminators to one schema
// definition name. Three resolution paths exist and stay deliberately
// distinct: direct types carry no genesis at all, genesis-only variants
// ignore sampling, and measured variants bifurcate by sampling mode.
// Collapsing them into one generic walk would lose the business rule that
// a direct type rejects an explicitly supplied genesis.

// samplingTable maps a sampling mode to a definition name.
type samplingTable map[string]DefinitionName

// genesisEntry resolves one genesis value: either directly to a definition
// (sampling is irrelevant and ignored) or through a sampling lookup.
type genesisEntry struct {
	direct     DefinitionName
	bySampling samplingTable
}

// typeEntry resolves one variable type: either a direct definition with no
// further discriminators, or a per-genesis table. The two are mutually
// exclusive by construction.
type typeEntry struct {
	direct    DefinitionName
	byGenesis map[string]genesisEntry
}

var typeTable = map[string]typeEntry{
	"ph": {byGenesis: map[string]genesisEntry{
		"measured": {bySampling: samplingTable{
			"discrete":   DefDiscretePH,
			"continuous": DefContinuousPH,
		}},
		"calculated": {direct: DefCalculated},
	}},
	"ta": {byGenesis: map[string]genesisEntry{
		"measured":   {bySampling: samplingTable{"discrete": DefDiscreteTA}},
		"calculated": {direct: DefCalculated},
	}},
	"dic": {byGenesis: map[string]genesisEntry{
		"measured":   {bySampling: samplingTable{"discrete": DefDiscreteDIC}},
		"calculated": {direct: DefCalculated},
	}},
	"co2": {byGenesis: map[string]genesisEntry{
		"measured":   {bySampling: samplingTable{"discrete": DefDiscreteCO2}},
		"calculated": {direct: DefCalculated},
	}},
	"oxygen": {byGenesis: map[string]genesisEntry{
		"measured": {bySampling: samplingTable{
			"discrete":   DefDiscreteOxygen,
			"continuous": DefContinuousOxygen,
		}},
		"calculated": {direct: DefCalculated},
	}},
	"nutrient": {byGenesis: map[string]genesisEntry{
		"measured":   {bySampling: samplingTable{"discrete": DefDiscreteNutrient}},
		"calculated": {direct: DefCalculated},
	}},
	"sediment": {byGenesis: map[string]genesisEntry{
		"measured": {bySampling: samplingTable{"discrete": DefSediment}},
	}},
	"hplc": {byGenesis: map[string]genesisEntry{
		"measured": {bySampling: samplingTable{"discrete": DefHPLC}},
	}},
	"non_measured": {direct: DefNonMeasured},
	"other": {byGenesis: map[string]genesisEntry{
		"measured": {bySampling: samplingTable{
			"discrete":   DefDiscreteGeneric,
			"continuous": DefContinuousGeneric,
		}},
		"calculated": {direct: DefCalculated},
	}},
}

// discriminatorOverride pins a discriminator to a fixed value for variable
// families with only one valid combination. An override value replaces the
// caller-supplied one entirely.
type discriminatorOverride struct {
	genesis  string
	sampling string
}

var typeOverrides = map[string]discriminatorOverride{
	// Sediment cores are always directly measured discrete samples.
	"sediment": {genesis: "measured", sampling: "discrete"},
	// HPLC pigment analysis is by definition a measurement; sampling mode
	// still distinguishes the (only) discrete variant from unsupported ones.
	"hplc": {genesis: "measured"},
}

// Resolve maps the discriminator tuple to the governing schema definition.
// Absent discriminators are the empty string. The boolean is false when the
// tuple is incomplete, unknown, or names a combination with no variant;
// resolution failure is an expected domain condition, never an error.
//
// Resolve is a pure function over the static tables above: idempotent,
// side-effect free, and safe for concurrent use.
func Resolve(variableType, genesis, sampling string) (DefinitionName, bool) {
	if variableType == "" {
		return "", false
	}
	// Type tokens are matched case-insensitively; "pH" and "ph" are the
	// same family.
	variableType = strings.ToLower(variableType)
	entry, ok := typeTable[variableType]
	if !ok {
		return "", false
	}
	if override, ok := typeOverrides[variableType]; ok {
		if override.genesis != "" {
			genesis = override.genesis
		}
		if override.sampling != "" {
			sampling = override.sampling
		}
	}
	if entry.direct != "" {
		// Direct types resolve without a genesis; supplying one is a
		// contradiction, not a value to reconcile.
		if genesis != "" {
			return "", false
		}
		return entry.direct, true
	}
	if genesis == "" {
		return "", false
	}
	ge, ok := entry.byGenesis[genesis]
	if !ok {
		return "", false
	}
	if ge.direct != "" {
		return ge.direct, true
	}
	if sampling == "" {
		return "", false
	}
	def, ok := ge.bySampling[sampling]
	if !ok {
		return "", false
	}
	return def, true
}
