// Package domain contains core business entities and types for radiation
// equivalent and effective dose computation following the ICRP Publication 103
// weighting-factor methodology.
//
// Reference: ICRP, 2007. The 2007 Recommendations of the International
// Commission on Radiological Protection. ICRP Publication 103. Ann. ICRP 37 (2-4).
package domain

import (
	"github.com/shopspring/decimal"
)

// Dose quantities serialize as JSON numbers, matching the factor data file
// and keeping the exact decimal digits on the wire.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// RadiationKind identifies the radiation category of an irradiation entry.
// The set is closed; neutron is special-cased because its weighting factor
// depends on energy rather than being a tabulated constant.
//
// Reference: ICRP 103, Table 2
type RadiationKind string

const (
	RadiationPhoton   RadiationKind = "photon"
	RadiationElectron RadiationKind = "electron"
	RadiationMuon     RadiationKind = "muon"
	RadiationProton   RadiationKind = "proton"
	RadiationPion     RadiationKind = "pion"
	RadiationAlpha    RadiationKind = "alpha"
	RadiationHeavyIon RadiationKind = "heavy_ion"
	RadiationNeutron  RadiationKind = "neutron"
)

// BaseRadiationKinds lists every kind whose w_R is a tabulated constant.
// Neutron is deliberately absent; it is resolved through the energy-dependent
// piecewise function instead.
var BaseRadiationKinds = []RadiationKind{
	RadiationPhoton,
	RadiationElectron,
	RadiationMuon,
	RadiationProton,
	RadiationPion,
	RadiationAlpha,
	RadiationHeavyIon,
}

// IsValid reports whether the RadiationKind is a member of the closed
// enumeration. Inputs must never reach dose arithmetic with an unlisted kind.
func (k RadiationKind) IsValid() bool {
	switch k {
	case RadiationPhoton, RadiationElectron, RadiationMuon, RadiationProton,
		RadiationPion, RadiationAlpha, RadiationHeavyIon, RadiationNeutron:
		return true
	default:
		return false
	}
}

// String returns the wire representation of the radiation kind.
func (k RadiationKind) String() string {
	return string(k)
}

// Tissue is a canonical ICRP 103 tissue key as it appears in the factor
// table, e.g. "lung" or "red_bone_marrow".
type Tissue string

// TissueRemainder is the synthetic bucket that aggregates the 14 minor
// remainder tissues under one shared tissue weighting factor.
const TissueRemainder Tissue = "remainder_tissues"

// String returns the canonical key.
func (t Tissue) String() string {
	return string(t)
}

// IrradiationEntry is a single absorbed-dose record for one tissue and one
// radiation kind. Entries are ephemeral request values; they carry the raw
// tissue name before resolution.
type IrradiationEntry struct {
	// Tissue is the raw, user-supplied tissue name or alias.
	Tissue string `json:"tissue"`
	// Radiation is the radiation category of the exposure.
	Radiation RadiationKind `json:"radiation"`
	// AbsorbedDoseGy is the absorbed dose in gray. Must be strictly positive.
	AbsorbedDoseGy decimal.Decimal `json:"absorbed_dose_Gy"`
	// NeutronEnergyMeV is the neutron energy in MeV. Required when
	// Radiation == neutron and CustomWR is not supplied.
	NeutronEnergyMeV *decimal.Decimal `json:"neutron_energy_MeV,omitempty"`
	// CustomWR overrides any computed radiation weighting factor when set.
	// Must be strictly positive.
	CustomWR *decimal.Decimal `json:"custom_wR,omitempty"`
}

// ResolvedContribution is one entry after tissue and w_R resolution.
type ResolvedContribution struct {
	Tissue           Tissue
	EffectiveWR      decimal.Decimal
	EquivalentDoseSv decimal.Decimal
}

// TissueResult is the per-tissue output row of a dose computation.
// WT and ContributionToESv are populated only in effective-dose mode.
type TissueResult struct {
	Tissue             Tissue           `json:"tissue"`
	WT                 *decimal.Decimal `json:"w_T,omitempty"`
	EquivalentDoseSv   decimal.Decimal  `json:"H_T_Sv"`
	ContributionToESv  *decimal.Decimal `json:"contribution_to_E_Sv,omitempty"`
}

// EffectiveDoseResult is the full output of an effective-dose computation.
// ByTissue preserves first-seen canonical tissue order from the input.
type EffectiveDoseResult struct {
	ByTissue        []TissueResult  `json:"by_tissue"`
	EffectiveDoseSv decimal.Decimal `json:"effective_dose_Sv"`
}

// EquivalentDoseResult is the output of an equivalent-dose computation:
// per-tissue H_T only, no tissue weighting and no whole-body scalar.
type EquivalentDoseResult struct {
	ByTissue []TissueResult `json:"by_tissue"`
}
