// Package factors loads and validates the versioned ICRP 103 factor dataset:
// tissue weighting factors w_T, base radiation weighting factors w_R, tissue
// aliases, and the remainder tissue list.
//
// The table is the single mutation point of the engine. Load validates every
// invariant once; the returned Table is immutable afterward and safe for
// unsynchronized concurrent reads.
package factors

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/icrp103-dose-server/internal/domain"
)

// Sum-to-one tolerance for the primary tissue weights.
var sumTolerance = decimal.New(1, -9) // 1e-9

//go:embed data/icrp103_factors.json
var defaultFactorData []byte

// fileSchema mirrors the on-disk JSON layout of the factor data file. The
// schema is the only durable artifact of the service and must remain stable
// across versions that claim ICRP 103 compliance.
type fileSchema struct {
	ICRPPublication string                     `json:"icrp_publication"`
	Version         string                     `json:"version"`
	Units           map[string]string          `json:"units"`
	TissueWeights   map[string]decimal.Decimal `json:"tissue_weighting_factors"`
	RemainderList   []string                   `json:"remainder_tissues_list"`
	TissueAliases   map[string]string          `json:"tissue_aliases"`
	RadiationWeights struct {
		Base map[string]decimal.Decimal `json:"base"`
	} `json:"radiation_weighting_factors"`
}

// Table is the immutable, process-wide factor dataset.
type Table struct {
	version       string
	tissueWeight  map[domain.Tissue]decimal.Decimal
	baseWeight    map[domain.RadiationKind]decimal.Decimal
	alias         map[string]domain.Tissue
	remainder     map[string]struct{}
	canonicalSeen map[string]domain.Tissue
}

// NormalizeName maps a raw tissue name to its lookup form: lowercase,
// trimmed, with runs of whitespace, underscores, and hyphens collapsed to a
// single underscore separator.
func NormalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '_' || r == '-'
	})
	return strings.Join(fields, "_")
}

// Load reads and validates the factor data file at path. An empty path
// selects the embedded default dataset. Any invariant violation surfaces as
// a DataIntegrityError; the caller must treat that as fatal.
func Load(path string) (*Table, error) {
	data := defaultFactorData
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read factor data file: %w", err)
		}
		data = b
	}
	return loadBytes(data)
}

func loadBytes(data []byte) (*Table, error) {
	var schema fileSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, domain.NewDataIntegrityError("malformed factor data: %v", err)
	}

	if strings.TrimSpace(schema.ICRPPublication) != "103" {
		return nil, domain.NewDataIntegrityError("icrp_publication must be '103', got '%s'", schema.ICRPPublication)
	}
	if schema.Version == "" {
		return nil, domain.NewDataIntegrityError("factor data version is required")
	}

	t := &Table{
		version:       schema.Version,
		tissueWeight:  make(map[domain.Tissue]decimal.Decimal, len(schema.TissueWeights)),
		baseWeight:    make(map[domain.RadiationKind]decimal.Decimal, len(schema.RadiationWeights.Base)),
		alias:         make(map[string]domain.Tissue, len(schema.TissueAliases)),
		remainder:     make(map[string]struct{}, len(schema.RemainderList)),
		canonicalSeen: make(map[string]domain.Tissue, len(schema.TissueWeights)),
	}

	if len(schema.TissueWeights) == 0 {
		return nil, domain.NewDataIntegrityError("tissue_weighting_factors is empty")
	}

	sum := decimal.Zero
	one := decimal.NewFromInt(1)
	for name, w := range schema.TissueWeights {
		key := NormalizeName(name)
		if key == "" {
			return nil, domain.NewDataIntegrityError("empty canonical tissue key")
		}
		if w.Sign() <= 0 {
			return nil, domain.NewDataIntegrityError("w_T for '%s' must be > 0, got %s", name, w)
		}
		if w.GreaterThan(one) {
			return nil, domain.NewDataIntegrityError("w_T for '%s' must be <= 1, got %s", name, w)
		}
		canonical := domain.Tissue(key)
		t.tissueWeight[canonical] = w
		t.canonicalSeen[key] = canonical
		sum = sum.Add(w)
	}
	if _, ok := t.tissueWeight[domain.TissueRemainder]; !ok {
		return nil, domain.NewDataIntegrityError("tissue_weighting_factors must include '%s'", domain.TissueRemainder)
	}
	if sum.Sub(one).Abs().GreaterThan(sumTolerance) {
		return nil, domain.NewDataIntegrityError("primary tissue weights must sum to 1.0 within tolerance, got %s", sum)
	}

	for _, kind := range domain.BaseRadiationKinds {
		w, ok := schema.RadiationWeights.Base[string(kind)]
		if !ok {
			return nil, domain.NewDataIntegrityError("radiation_weighting_factors.base missing '%s'", kind)
		}
		if w.Sign() <= 0 {
			return nil, domain.NewDataIntegrityError("w_R for '%s' must be > 0, got %s", kind, w)
		}
		t.baseWeight[kind] = w
	}
	for name := range schema.RadiationWeights.Base {
		kind := domain.RadiationKind(name)
		if !kind.IsValid() || kind == domain.RadiationNeutron {
			return nil, domain.NewDataIntegrityError("radiation_weighting_factors.base has unexpected key '%s'", name)
		}
	}

	for raw, target := range schema.TissueAliases {
		key := NormalizeName(raw)
		canonical, ok := t.canonicalSeen[NormalizeName(target)]
		if !ok {
			return nil, domain.NewDataIntegrityError("alias '%s' maps to unknown tissue '%s'", raw, target)
		}
		t.alias[key] = canonical
	}

	for _, member := range schema.RemainderList {
		key := NormalizeName(member)
		if key == "" {
			return nil, domain.NewDataIntegrityError("empty remainder tissue name")
		}
		if _, clash := t.canonicalSeen[key]; clash {
			return nil, domain.NewDataIntegrityError("remainder tissue '%s' collides with a canonical tissue key", member)
		}
		t.remainder[key] = struct{}{}
	}

	return t, nil
}

// Version returns the dataset version string.
func (t *Table) Version() string {
	return t.version
}

// TissueWeight returns the w_T for a canonical tissue.
func (t *Table) TissueWeight(tissue domain.Tissue) (decimal.Decimal, bool) {
	w, ok := t.tissueWeight[tissue]
	return w, ok
}

// BaseWeight returns the tabulated w_R for a non-neutron radiation kind.
func (t *Table) BaseWeight(kind domain.RadiationKind) (decimal.Decimal, bool) {
	w, ok := t.baseWeight[kind]
	return w, ok
}

// LookupAlias returns the canonical tissue for a normalized alias name.
func (t *Table) LookupAlias(normalized string) (domain.Tissue, bool) {
	tissue, ok := t.alias[normalized]
	return tissue, ok
}

// IsRemainderMember reports whether a normalized name belongs to the
// remainder tissue list.
func (t *Table) IsRemainderMember(normalized string) bool {
	_, ok := t.remainder[normalized]
	return ok
}

// LookupCanonical returns the canonical tissue whose key equals the
// normalized name, if any.
func (t *Table) LookupCanonical(normalized string) (domain.Tissue, bool) {
	tissue, ok := t.canonicalSeen[normalized]
	return tissue, ok
}

// TissueWeights returns a snapshot copy of the w_T table.
func (t *Table) TissueWeights() map[domain.Tissue]decimal.Decimal {
	out := make(map[domain.Tissue]decimal.Decimal, len(t.tissueWeight))
	for tissue, w := range t.tissueWeight {
		out[tissue] = w
	}
	return out
}

// BaseWeights returns a snapshot copy of the base w_R table.
func (t *Table) BaseWeights() map[domain.RadiationKind]decimal.Decimal {
	out := make(map[domain.RadiationKind]decimal.Decimal, len(t.baseWeight))
	for kind, w := range t.baseWeight {
		out[kind] = w
	}
	return out
}

// RemainderMembers returns a copy of the remainder tissue names.
func (t *Table) RemainderMembers() []string {
	out := make([]string, 0, len(t.remainder))
	for member := range t.remainder {
		out = append(out, member)
	}
	return out
}
