// Package formengine resolves which polymorphic schema variant governs a
// variable record and composes the sectioned field list rendered for it.
//
// The source ontology expresses variables as an implicit class hierarchy:
// a shared base, a sampling-mode level (discrete bottle samples vs
// continuous sensor streams), and a variable-family level (pH, TA, DIC,
// CO2, oxygen, nutrients, sediment, HPLC pigments, calculated, and
// non-measured quantities). That hierarchy is modelled here as data, not
// inheritance: each level is an immutable formspec.HierarchyLayer, and a
// static table maps every resolved schema definition to its ordered layer
// stack. One deterministic merge algorithm turns a stack into the final
// accordion configuration.
//
// All operations are pure functions over the static tables; they allocate
// fresh output per call and are safe for concurrent use.
package formengine
