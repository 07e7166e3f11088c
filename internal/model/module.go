// Package model holds the records compass reads and writes: user profiles,
// assessments, chat sessions and the insight sets extracted from them.
package model

// Module is a topical tag classifying a chat session or recommendation.
type Module string

const (
	ModulePassions   Module = "passions"
	ModuleStrengths  Module = "strengths"
	ModuleUpskill    Module = "upskill"
	ModuleMoney      Module = "money"
	ModuleCareer     Module = "career"
	ModuleEvents     Module = "events"
	ModuleGoals      Module = "goals"
	ModuleCommunity  Module = "community"
	ModuleBusiness   Module = "business"
	ModuleNetworking Module = "networking"
	ModuleGeneral    Module = "general"
)

// Modules lists every module in declaration order. Exploration suggestions
// walk this order, so it must not be re-sorted.
var Modules = []Module{
	ModulePassions,
	ModuleStrengths,
	ModuleUpskill,
	ModuleMoney,
	ModuleCareer,
	ModuleEvents,
	ModuleGoals,
	ModuleCommunity,
	ModuleBusiness,
	ModuleNetworking,
	ModuleGeneral,
}

// Valid reports whether m is one of the declared modules.
func (m Module) Valid() bool {
	for _, known := range Modules {
		if m == known {
			return true
		}
	}
	return false
}

// ParseModule returns the module named by s, or general when s is empty or unknown.
func ParseModule(s string) Module {
	m := Module(s)
	if m.Valid() {
		return m
	}
	return ModuleGeneral
}
