package domain

import (
	"github.com/shopspring/decimal"
)

// DoseCalculator is the narrow call contract the transport layer consumes.
// Implementations are stateless per invocation apart from the immutable
// factor table and are safe for concurrent use without coordination.
type DoseCalculator interface {
	// ComputeEquivalentDose returns per-tissue H_T values with no tissue
	// weighting and no whole-body scalar.
	ComputeEquivalentDose(entries []IrradiationEntry) (*EquivalentDoseResult, error)
	// ComputeEffectiveDose returns per-tissue H_T, w_T, contributions, and
	// the whole-body effective dose E.
	ComputeEffectiveDose(entries []IrradiationEntry) (*EffectiveDoseResult, error)
	// LookupNeutronWr exposes the energy-dependent neutron w_R function for
	// diagnostic use. Fails with InvalidEnergyError when energy <= 0.
	LookupNeutronWr(energyMeV decimal.Decimal) (decimal.Decimal, error)
	// TissueFactors returns a snapshot copy of the w_T table.
	TissueFactors() map[Tissue]decimal.Decimal
	// RadiationFactors returns a snapshot copy of the base w_R table.
	// Neutron is excluded; its w_R is a function, not a constant.
	RadiationFactors() map[RadiationKind]decimal.Decimal
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	Validate() error
}
