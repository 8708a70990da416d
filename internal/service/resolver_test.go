package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icrp103-dose-server/internal/domain"
	"github.com/icrp103-dose-server/internal/factors"
)

func testTable(t *testing.T) *factors.Table {
	t.Helper()
	table, err := factors.Load("")
	require.NoError(t, err)
	return table
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func decPtr(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d := dec(t, s)
	return &d
}

func TestResolveTissue(t *testing.T) {
	resolver := NewResolver(testTable(t))

	tests := []struct {
		name    string
		input   string
		want    domain.Tissue
		wantErr bool
	}{
		{"Canonical key", "lung", domain.Tissue("lung"), false},
		{"Alias", "rbm", domain.Tissue("red_bone_marrow"), false},
		{"Alias with spaces", "bone marrow", domain.Tissue("red_bone_marrow"), false},
		{"Spelling variant alias", "esophagus", domain.Tissue("oesophagus"), false},
		{"Uppercase with padding", "  RED_BONE_MARROW ", domain.Tissue("red_bone_marrow"), false},
		{"Space separated canonical", "salivary glands", domain.Tissue("salivary_glands"), false},
		{"Remainder member", "heart", domain.TissueRemainder, false},
		{"Remainder member kidneys", "kidneys", domain.TissueRemainder, false},
		{"Remainder alias", "remainder", domain.TissueRemainder, false},
		{"Remainder bucket direct", "remainder_tissues", domain.TissueRemainder, false},
		{"Unknown tissue", "invalid_tissue", "", true},
		{"Empty name", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.ResolveTissue(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var unknown *domain.UnknownTissueError
				require.ErrorAs(t, err, &unknown)
				assert.Equal(t, tt.input, unknown.Name)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveTissueAliasIdempotence(t *testing.T) {
	resolver := NewResolver(testTable(t))

	variants := []string{"rbm", "red_bone_marrow", "  RED_BONE_MARROW ", "red bone marrow"}
	for _, v := range variants {
		got, err := resolver.ResolveTissue(v)
		require.NoError(t, err, "variant %q", v)
		assert.Equal(t, domain.Tissue("red_bone_marrow"), got, "variant %q", v)
	}
}

func TestResolveWRBaseKinds(t *testing.T) {
	resolver := NewResolver(testTable(t))

	tests := []struct {
		kind domain.RadiationKind
		want string
	}{
		{domain.RadiationPhoton, "1"},
		{domain.RadiationElectron, "1"},
		{domain.RadiationMuon, "1"},
		{domain.RadiationProton, "2"},
		{domain.RadiationPion, "2"},
		{domain.RadiationAlpha, "20"},
		{domain.RadiationHeavyIon, "20"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			entry := domain.IrradiationEntry{
				Tissue:         "lung",
				Radiation:      tt.kind,
				AbsorbedDoseGy: dec(t, "0.01"),
			}
			wr, err := resolver.ResolveWR(&entry)
			require.NoError(t, err)
			assert.True(t, wr.Equal(dec(t, tt.want)), "w_R = %s, want %s", wr, tt.want)
		})
	}
}

func TestResolveWRNeutron(t *testing.T) {
	resolver := NewResolver(testTable(t))

	t.Run("Valid energy", func(t *testing.T) {
		entry := domain.IrradiationEntry{
			Tissue:           "lung",
			Radiation:        domain.RadiationNeutron,
			AbsorbedDoseGy:   dec(t, "0.01"),
			NeutronEnergyMeV: decPtr(t, "2.0"),
		}
		wr, err := resolver.ResolveWR(&entry)
		require.NoError(t, err)
		assert.True(t, wr.Equal(NeutronWR(dec(t, "2.0"))))
	})

	t.Run("Missing energy", func(t *testing.T) {
		entry := domain.IrradiationEntry{
			Tissue:         "lung",
			Radiation:      domain.RadiationNeutron,
			AbsorbedDoseGy: dec(t, "0.01"),
		}
		_, err := resolver.ResolveWR(&entry)
		require.Error(t, err)
		var missing *domain.MissingParameterError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "neutron_energy_MeV", missing.Field)
	})

	t.Run("Non-positive energy", func(t *testing.T) {
		entry := domain.IrradiationEntry{
			Tissue:           "lung",
			Radiation:        domain.RadiationNeutron,
			AbsorbedDoseGy:   dec(t, "0.01"),
			NeutronEnergyMeV: decPtr(t, "0"),
		}
		_, err := resolver.ResolveWR(&entry)
		require.Error(t, err)
		var invalid *domain.InvalidEnergyError
		assert.ErrorAs(t, err, &invalid)
	})
}

func TestResolveWROverridePrecedence(t *testing.T) {
	resolver := NewResolver(testTable(t))

	// A custom w_R wins even for a neutron entry with no energy at all.
	entry := domain.IrradiationEntry{
		Tissue:         "lung",
		Radiation:      domain.RadiationNeutron,
		AbsorbedDoseGy: dec(t, "0.01"),
		CustomWR:       decPtr(t, "7.5"),
	}
	wr, err := resolver.ResolveWR(&entry)
	require.NoError(t, err)
	assert.True(t, wr.Equal(dec(t, "7.5")))
}

func TestResolveWRInvalidCustom(t *testing.T) {
	resolver := NewResolver(testTable(t))

	entry := domain.IrradiationEntry{
		Tissue:         "lung",
		Radiation:      domain.RadiationPhoton,
		AbsorbedDoseGy: dec(t, "0.01"),
		CustomWR:       decPtr(t, "-5"),
	}
	_, err := resolver.ResolveWR(&entry)
	require.Error(t, err)
	var invalid *domain.InvalidDoseError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "custom_wR", invalid.Field)
}
