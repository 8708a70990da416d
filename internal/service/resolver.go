package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/icrp103-dose-server/internal/domain"
	"github.com/icrp103-dose-server/internal/factors"
)

// Resolver maps raw tissue names to canonical ICRP 103 tissue keys and
// irradiation entries to concrete radiation weighting factors. Both
// resolutions are pure lookups against the immutable factor table; a Resolver
// is safe for concurrent use.
type Resolver struct {
	table *factors.Table
	// neutronWR computes w_R(E) for neutrons. Injected so the calculator can
	// supply a memoized variant; the argument is always > 0.
	neutronWR func(energyMeV decimal.Decimal) decimal.Decimal
}

// NewResolver creates a resolver over the given factor table.
func NewResolver(table *factors.Table) *Resolver {
	return &Resolver{
		table:     table,
		neutronWR: NeutronWR,
	}
}

// ResolveTissue maps a user-supplied tissue name to its canonical key.
//
// Resolution order: normalize, then alias table, then remainder membership
// (which rolls up into the synthetic remainder bucket), then direct canonical
// match. No fallback: an unresolvable name is a validation failure, never a
// zero or average weighting.
func (r *Resolver) ResolveTissue(name string) (domain.Tissue, error) {
	key := factors.NormalizeName(name)
	if key == "" {
		return "", &domain.UnknownTissueError{Name: name, Position: -1}
	}
	if tissue, ok := r.table.LookupAlias(key); ok {
		return tissue, nil
	}
	if r.table.IsRemainderMember(key) {
		return domain.TissueRemainder, nil
	}
	if tissue, ok := r.table.LookupCanonical(key); ok {
		return tissue, nil
	}
	return "", &domain.UnknownTissueError{Name: name, Position: -1}
}

// ResolveWR determines the radiation weighting factor for a single entry.
//
// A supplied custom w_R always wins, regardless of kind or energy. Neutrons
// require a strictly positive energy and go through the ICRP 103 piecewise
// function; every other kind uses the tabulated base factor.
func (r *Resolver) ResolveWR(entry *domain.IrradiationEntry) (decimal.Decimal, error) {
	if entry.CustomWR != nil {
		if entry.CustomWR.Sign() <= 0 {
			return decimal.Zero, &domain.InvalidDoseError{
				Field:    "custom_wR",
				Value:    *entry.CustomWR,
				Position: -1,
			}
		}
		return *entry.CustomWR, nil
	}

	if entry.Radiation == domain.RadiationNeutron {
		if entry.NeutronEnergyMeV == nil {
			return decimal.Zero, &domain.MissingParameterError{
				Field:    "neutron_energy_MeV",
				Position: -1,
			}
		}
		if entry.NeutronEnergyMeV.Sign() <= 0 {
			return decimal.Zero, &domain.InvalidEnergyError{
				EnergyMeV: *entry.NeutronEnergyMeV,
				Position:  -1,
			}
		}
		return r.neutronWR(*entry.NeutronEnergyMeV), nil
	}

	w, ok := r.table.BaseWeight(entry.Radiation)
	if !ok {
		// The closed enumeration is enforced at the transport boundary and at
		// table load; reaching this is an internal inconsistency.
		return decimal.Zero, fmt.Errorf("no base w_R for radiation kind '%s'", entry.Radiation)
	}
	return w, nil
}
