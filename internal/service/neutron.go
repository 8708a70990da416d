package service

import (
	"math"

	"github.com/shopspring/decimal"
)

// Neutron w_R branch boundaries in MeV. The middle branch is closed on both
// ends: E = 1 and E = 50 both evaluate on the 1-50 MeV expression. Reference
// outputs at the boundaries depend on this convention.
var (
	neutronLowBound  = decimal.NewFromInt(1)
	neutronHighBound = decimal.NewFromInt(50)
)

// NeutronWR computes the neutron radiation weighting factor w_R as a function
// of energy E in MeV, per the ICRP 103 continuous piecewise definition:
//
//	E < 1:         w_R = 2.5 + 18.2 * exp(-(ln E)^2 / 6)
//	1 <= E <= 50:  w_R = 5.0 + 17.0 * exp(-(ln E)^2 / 6)
//	E > 50:        w_R = 2.5 + 3.25 * exp(-(ln(0.04*E))^2 / 6)
//
// The transcendental terms are evaluated in float64 and the result converted
// through its shortest round-trip decimal representation before it enters any
// downstream product or sum. The caller guarantees energyMeV > 0, so the
// logarithm argument is always positive.
func NeutronWR(energyMeV decimal.Decimal) decimal.Decimal {
	e, _ := energyMeV.Float64()
	lnE := math.Log(e)

	var wr float64
	switch {
	case energyMeV.LessThan(neutronLowBound):
		wr = 2.5 + 18.2*math.Exp(-(lnE*lnE)/6.0)
	case energyMeV.LessThanOrEqual(neutronHighBound):
		wr = 5.0 + 17.0*math.Exp(-(lnE*lnE)/6.0)
	default:
		lnShifted := math.Log(0.04 * e)
		wr = 2.5 + 3.25*math.Exp(-(lnShifted*lnShifted)/6.0)
	}
	return decimal.NewFromFloat(wr)
}
