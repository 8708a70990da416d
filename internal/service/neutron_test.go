package service

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeutronWRBranchAtOneMeV(t *testing.T) {
	// E = 1 is closed into the middle branch: ln(1) = 0, so
	// w_R = 5.0 + 17.0 * exp(0) = 22 exactly. The low branch would give
	// 2.5 + 18.2 = 20.7 instead.
	wr := NeutronWR(decimal.NewFromInt(1))
	assert.True(t, wr.Equal(decimal.NewFromInt(22)), "w_R(1) = %s, want 22", wr)
}

func TestNeutronWRBranchAtFiftyMeV(t *testing.T) {
	// E = 50 is closed into the middle branch as well.
	ln50 := math.Log(50.0)
	middle := 5.0 + 17.0*math.Exp(-(ln50*ln50)/6.0)
	lnShifted := math.Log(0.04 * 50.0)
	high := 2.5 + 3.25*math.Exp(-(lnShifted*lnShifted)/6.0)
	require.NotEqual(t, middle, high)

	wr := NeutronWR(decimal.NewFromInt(50))
	assert.True(t, wr.Equal(decimal.NewFromFloat(middle)), "w_R(50) = %s, want middle branch %v", wr, middle)
}

func TestNeutronWRLowBranch(t *testing.T) {
	lnE := math.Log(0.5)
	want := 2.5 + 18.2*math.Exp(-(lnE*lnE)/6.0)

	wr := NeutronWR(decimal.RequireFromString("0.5"))
	got, _ := wr.Float64()
	assert.InEpsilon(t, want, got, 1e-12)
}

func TestNeutronWRHighBranch(t *testing.T) {
	lnShifted := math.Log(0.04 * 100.0)
	want := 2.5 + 3.25*math.Exp(-(lnShifted*lnShifted)/6.0)

	wr := NeutronWR(decimal.NewFromInt(100))
	got, _ := wr.Float64()
	assert.InEpsilon(t, want, got, 1e-12)
}

func TestNeutronWRSmoothWithinMiddleBranch(t *testing.T) {
	// Both closed boundary points evaluate on the middle branch, so adjacent
	// middle-branch energies stay close to them.
	atOne, _ := NeutronWR(decimal.RequireFromString("1.0")).Float64()
	aboveOne, _ := NeutronWR(decimal.RequireFromString("1.0001")).Float64()
	assert.InEpsilon(t, atOne, aboveOne, 1e-3)

	belowFifty, _ := NeutronWR(decimal.RequireFromString("49.999")).Float64()
	atFifty, _ := NeutronWR(decimal.RequireFromString("50.0")).Float64()
	assert.InEpsilon(t, atFifty, belowFifty, 1e-3)
}

func TestNeutronWRPositiveAcrossRange(t *testing.T) {
	for _, e := range []string{"0.001", "0.025", "0.5", "1", "2", "10", "50", "100", "1000"} {
		wr := NeutronWR(decimal.RequireFromString(e))
		assert.True(t, wr.Sign() > 0, "w_R(%s) = %s, want > 0", e, wr)
	}
}
