package formengine

import (
	"sort"

	"oceanmeta/pkg/formspec"
)

// DefinitionName identifies one polymorphic variant definition inside the
// bundled schema's definition table. Values are produced only by Resolve;
// nothing else in the module hand-constructs them.
type DefinitionName string

// Known schema definition names.
const (
	DefDiscretePH        DefinitionName = "DiscretePHVariable"
	DefContinuousPH      DefinitionName = "ContinuousPHVariable"
	DefDiscreteTA        DefinitionName = "DiscreteTAVariable"
	DefDiscreteDIC       DefinitionName = "DiscreteDICVariable"
	DefDiscreteCO2       DefinitionName = "DiscreteCO2Variable"
	DefDiscreteOxygen    DefinitionName = "DiscreteOxygenVariable"
	DefContinuousOxygen  DefinitionName = "ContinuousOxygenVariable"
	DefDiscreteNutrient  DefinitionName = "DiscreteNutrientVariable"
	DefSediment          DefinitionName = "SedimentVariable"
	DefHPLC              DefinitionName = "HPLCVariable"
	DefCalculated        DefinitionName = "CalculatedVariable"
	DefNonMeasured       DefinitionName = "NonMeasuredVariable"
	DefDiscreteGeneric   DefinitionName = "DiscreteGenericVariable"
	DefContinuousGeneric DefinitionName = "ContinuousGenericVariable"
)

// layerStacks is the single source of truth connecting a resolved variant
// to its composed field set: an ordered layer stack per definition, fixed
// at process start.
var layerStacks = map[DefinitionName][]formspec.HierarchyLayer{
	DefDiscretePH:        {baseLayer, discreteLayer, phLayer},
	DefContinuousPH:      {baseLayer, continuousLayer, phLayer},
	DefDiscreteTA:        {baseLayer, discreteLayer, taLayer},
	DefDiscreteDIC:       {baseLayer, discreteLayer, dicLayer},
	DefDiscreteCO2:       {baseLayer, discreteLayer, co2Layer},
	DefDiscreteOxygen:    {baseLayer, discreteLayer, oxygenLayer},
	DefContinuousOxygen:  {baseLayer, continuousLayer, oxygenLayer},
	DefDiscreteNutrient:  {baseLayer, discreteLayer, nutrientLayer},
	DefSediment:          {baseLayer, discreteLayer, sedimentLayer},
	DefHPLC:              {baseLayer, discreteLayer, hplcLayer},
	DefCalculated:        {baseLayer, calculatedLayer},
	DefNonMeasured:       {baseLayer, nonMeasuredLayer},
	DefDiscreteGeneric:   {baseLayer, discreteLayer, genericLayer},
	DefContinuousGeneric: {baseLayer, continuousLayer, genericLayer},
}

// DefinitionNames lists every definition known to the layer stack table,
// sorted for stable output.
func DefinitionNames() []DefinitionName {
	names := make([]DefinitionName, 0, len(layerStacks))
	for name := range layerStacks {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// KnownDefinition reports whether the layer stack table covers name.
func KnownDefinition(name DefinitionName) bool {
	_, ok := layerStacks[name]
	return ok
}
