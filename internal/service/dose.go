// Package service implements the ICRP 103 dose computation engine: tissue and
// radiation weighting factor resolution and the aggregation of per-tissue
// equivalent dose H_T and whole-body effective dose E.
package service

import (
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/icrp103-dose-server/internal/domain"
	"github.com/icrp103-dose-server/internal/factors"
)

// Bounded memoization of the neutron w_R curve. Lookup traffic tends to
// cluster around a small set of energies.
const neutronCacheSize = 1024

// Calculator implements domain.DoseCalculator over an immutable factor
// table. It is stateless per invocation apart from the table and the neutron
// memo cache; concurrent invocations need no coordination.
type Calculator struct {
	logger       *logrus.Logger
	table        *factors.Table
	resolver     *Resolver
	neutronCache *lru.Cache[string, decimal.Decimal]
}

// NewCalculator creates a dose calculator over the given factor table.
func NewCalculator(logger *logrus.Logger, table *factors.Table) *Calculator {
	cache, _ := lru.New[string, decimal.Decimal](neutronCacheSize)
	c := &Calculator{
		logger:       logger,
		table:        table,
		neutronCache: cache,
	}
	resolver := NewResolver(table)
	resolver.neutronWR = c.memoizedNeutronWR
	c.resolver = resolver
	return c
}

func (c *Calculator) memoizedNeutronWR(energyMeV decimal.Decimal) decimal.Decimal {
	key := energyMeV.String()
	if wr, ok := c.neutronCache.Get(key); ok {
		return wr
	}
	wr := NeutronWR(energyMeV)
	c.neutronCache.Add(key, wr)
	return wr
}

// resolveAndGroup resolves every entry, computes its equivalent dose
// contribution, and groups contributions by canonical tissue. The returned
// slice preserves first-seen tissue order; within a tissue, contributions sum
// in input order. The first failing entry aborts the whole computation with
// its position stamped on the error.
func (c *Calculator) resolveAndGroup(entries []domain.IrradiationEntry) ([]domain.Tissue, map[domain.Tissue]decimal.Decimal, error) {
	if len(entries) == 0 {
		return nil, nil, &domain.MissingParameterError{Field: "irradiation", Position: -1}
	}

	order := make([]domain.Tissue, 0, len(entries))
	sums := make(map[domain.Tissue]decimal.Decimal, len(entries))

	for i, entry := range entries {
		if entry.AbsorbedDoseGy.Sign() <= 0 {
			return nil, nil, &domain.InvalidDoseError{
				Field:    "absorbed_dose_Gy",
				Value:    entry.AbsorbedDoseGy,
				Position: i,
			}
		}

		tissue, err := c.resolver.ResolveTissue(entry.Tissue)
		if err != nil {
			return nil, nil, tagPosition(err, i)
		}
		wr, err := c.resolver.ResolveWR(&entry)
		if err != nil {
			return nil, nil, tagPosition(err, i)
		}

		equivalent := entry.AbsorbedDoseGy.Mul(wr)
		if current, seen := sums[tissue]; seen {
			sums[tissue] = current.Add(equivalent)
		} else {
			sums[tissue] = equivalent
			order = append(order, tissue)
		}
	}

	return order, sums, nil
}

// ComputeEquivalentDose computes per-tissue equivalent dose H_T with no
// tissue weighting and no whole-body scalar.
func (c *Calculator) ComputeEquivalentDose(entries []domain.IrradiationEntry) (*domain.EquivalentDoseResult, error) {
	start := time.Now()
	order, sums, err := c.resolveAndGroup(entries)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.TissueResult, 0, len(order))
	for _, tissue := range order {
		rows = append(rows, domain.TissueResult{
			Tissue:           tissue,
			EquivalentDoseSv: sums[tissue],
		})
	}

	c.logger.WithFields(logrus.Fields{
		"entries":         len(entries),
		"tissues":         len(rows),
		"processing_time": time.Since(start),
	}).Debug("Equivalent dose computation completed")

	return &domain.EquivalentDoseResult{ByTissue: rows}, nil
}

// ComputeEffectiveDose computes per-tissue H_T, applies tissue weighting, and
// sums the weighted contributions into the whole-body effective dose E.
func (c *Calculator) ComputeEffectiveDose(entries []domain.IrradiationEntry) (*domain.EffectiveDoseResult, error) {
	start := time.Now()
	order, sums, err := c.resolveAndGroup(entries)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.TissueResult, 0, len(order))
	total := decimal.Zero
	for _, tissue := range order {
		wt, ok := c.table.TissueWeight(tissue)
		if !ok {
			// Resolution only ever yields keys present in the table.
			return nil, domain.NewDataIntegrityError("no w_T for resolved tissue '%s'", tissue)
		}
		ht := sums[tissue]
		contribution := wt.Mul(ht)
		total = total.Add(contribution)

		wtCopy := wt
		contributionCopy := contribution
		rows = append(rows, domain.TissueResult{
			Tissue:            tissue,
			WT:                &wtCopy,
			EquivalentDoseSv:  ht,
			ContributionToESv: &contributionCopy,
		})
	}

	c.logger.WithFields(logrus.Fields{
		"entries":           len(entries),
		"tissues":           len(rows),
		"effective_dose_Sv": total.String(),
		"processing_time":   time.Since(start),
	}).Debug("Effective dose computation completed")

	return &domain.EffectiveDoseResult{ByTissue: rows, EffectiveDoseSv: total}, nil
}

// LookupNeutronWr exposes the neutron w_R piecewise function for diagnostic
// lookups. Fails with InvalidEnergyError when energyMeV <= 0.
func (c *Calculator) LookupNeutronWr(energyMeV decimal.Decimal) (decimal.Decimal, error) {
	if energyMeV.Sign() <= 0 {
		return decimal.Zero, &domain.InvalidEnergyError{EnergyMeV: energyMeV, Position: -1}
	}
	return c.memoizedNeutronWR(energyMeV), nil
}

// TissueFactors returns a snapshot copy of the tissue weighting factor table.
func (c *Calculator) TissueFactors() map[domain.Tissue]decimal.Decimal {
	return c.table.TissueWeights()
}

// RadiationFactors returns a snapshot copy of the base radiation weighting
// factor table. Neutron is excluded; its w_R is a function of energy.
func (c *Calculator) RadiationFactors() map[domain.RadiationKind]decimal.Decimal {
	return c.table.BaseWeights()
}

// tagPosition stamps the input-sequence position onto a resolution error so
// the caller can point at the offending entry.
func tagPosition(err error, position int) error {
	var unknownTissue *domain.UnknownTissueError
	if errors.As(err, &unknownTissue) {
		unknownTissue.Position = position
		return err
	}
	var missing *domain.MissingParameterError
	if errors.As(err, &missing) {
		missing.Position = position
		return err
	}
	var invalidEnergy *domain.InvalidEnergyError
	if errors.As(err, &invalidEnergy) {
		invalidEnergy.Position = position
		return err
	}
	var invalidDose *domain.InvalidDoseError
	if errors.As(err, &invalidDose) {
		invalidDose.Position = position
		return err
	}
	return err
}
