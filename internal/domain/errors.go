package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Error codes for transport-level error responses
const (
	ErrCodeUnknownTissue    = "UNKNOWN_TISSUE"
	ErrCodeMissingParameter = "MISSING_PARAMETER"
	ErrCodeInvalidEnergy    = "INVALID_ENERGY"
	ErrCodeInvalidDose      = "INVALID_DOSE"
	ErrCodeDataIntegrity    = "DATA_INTEGRITY"
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeInternalServer   = "INTERNAL_SERVER_ERROR"
)

// UnknownTissueError reports a tissue name that resolves to nothing in the
// alias, remainder, or canonical sets. Position is the zero-based index of
// the offending entry in the request sequence, or -1 outside entry context.
type UnknownTissueError struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

func (e *UnknownTissueError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("unknown tissue '%s'", e.Name)
	}
	return fmt.Sprintf("entry %d: unknown tissue '%s'", e.Position, e.Name)
}

// MissingParameterError reports a kind-specific required field that is
// absent, e.g. a neutron entry without neutron_energy_MeV.
type MissingParameterError struct {
	Field    string `json:"field"`
	Position int    `json:"position"`
}

func (e *MissingParameterError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("missing required parameter '%s'", e.Field)
	}
	return fmt.Sprintf("entry %d: missing required parameter '%s'", e.Position, e.Field)
}

// InvalidEnergyError reports a neutron energy that is not strictly positive.
type InvalidEnergyError struct {
	EnergyMeV decimal.Decimal `json:"energy_MeV"`
	Position  int             `json:"position"`
}

func (e *InvalidEnergyError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("neutron energy must be greater than zero MeV, got %s", e.EnergyMeV)
	}
	return fmt.Sprintf("entry %d: neutron energy must be greater than zero MeV, got %s", e.Position, e.EnergyMeV)
}

// InvalidDoseError reports an absorbed dose or custom w_R that is not
// strictly positive.
type InvalidDoseError struct {
	Field    string          `json:"field"`
	Value    decimal.Decimal `json:"value"`
	Position int             `json:"position"`
}

func (e *InvalidDoseError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("%s must be greater than zero, got %s", e.Field, e.Value)
	}
	return fmt.Sprintf("entry %d: %s must be greater than zero, got %s", e.Position, e.Field, e.Value)
}

// DataIntegrityError reports a factor table that fails its load-time
// invariants. It is fatal at startup; the service must not begin serving.
type DataIntegrityError struct {
	Reason string `json:"reason"`
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("factor table integrity violation: %s", e.Reason)
}

// NewDataIntegrityError creates a DataIntegrityError with a formatted reason.
func NewDataIntegrityError(format string, args ...interface{}) *DataIntegrityError {
	return &DataIntegrityError{Reason: fmt.Sprintf(format, args...)}
}
