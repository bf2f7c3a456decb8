package duty

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tariff-duty/internal/errors"
)

func TestShippedScheduleMatchesBuiltin(t *testing.T) {
	loaded, err := LoadHCL(filepath.Join("..", "..", "configs", "schedule-2026.hcl"))
	require.NoError(t, err)
	builtin := Default2026()

	lr, br := loaded.Rules(), builtin.Rules()
	require.Len(t, lr, len(br))
	for i := range br {
		assert.Equal(t, br[i].Prefix, lr[i].Prefix)
		assert.Equal(t, br[i].Category, lr[i].Category)
		assert.Equal(t, br[i].Notes, lr[i].Notes)
		assert.True(t, br[i].DutyRate.Equal(lr[i].DutyRate), br[i].Prefix)
		assert.True(t, br[i].VATRate.Equal(lr[i].VATRate), br[i].Prefix)
	}

	lt, bt := loaded.Tiers(), builtin.Tiers()
	require.Len(t, lt, len(bt))
	for i := range bt {
		assert.Equal(t, bt[i].Bound, lt[i].Bound)
		assert.True(t, bt[i].Threshold.Equal(lt[i].Threshold))
		assert.True(t, bt[i].Fee.Equal(lt[i].Fee))
	}

	lo, bo := loaded.Options(), builtin.Options()
	assert.Equal(t, bo.Year, lo.Year)
	assert.True(t, bo.DefaultVATRate.Equal(lo.DefaultVATRate))
	assert.True(t, bo.ElectronicsFee.Equal(lo.ElectronicsFee))
	require.NotNil(t, lo.NonIndexed)
	assert.True(t, bo.NonIndexed.Over100Items.Equal(lo.NonIndexed.Over100Items))
	require.NotNil(t, lo.VAT)
	assert.True(t, bo.VAT.Reduced.Equal(lo.VAT.Reduced))

	b := loaded.Compute("6302310000", dec("100000"), 1)
	assertMoney(t, "35431", b.Total)
}

func TestParseHCLFixedDutyAndDefaults(t *testing.T) {
	src := `
default_vat_rate = 20
min_fee          = 500

fee_tier {
  max_value = 1000
  fee       = 100
}

rule "2402" {
  fixed_duty = 500
  excise     = 12.5
}
`
	s, err := ParseHCL([]byte(src), "inline.hcl")
	require.NoError(t, err)

	r, ok := s.ResolveRate("2402200000")
	require.True(t, ok)
	require.True(t, r.HasFixedDuty())
	assertMoney(t, "20", r.VATRate)
	require.NotNil(t, r.Excise)
	assertMoney(t, "12.5", *r.Excise)

	b := s.Compute("2402200000", dec("2000"), 3)
	assertMoney(t, "1500", b.Duty)
	assertMoney(t, "700", b.VAT)
	assertMoney(t, "500", b.CustomsFee)
}

func TestParseHCLErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		typ  errors.Type
	}{
		{"syntax", `default_vat_rate = `, errors.TypeParsing},
		{"missing required", `min_fee = 1`, errors.TypeParsing},
		{"tier without bound", "default_vat_rate = 22\nmin_fee = 1\nfee_tier {\n fee = 1\n}\n", errors.TypeConfig},
		{"tier with both bounds", "default_vat_rate = 22\nmin_fee = 1\nfee_tier {\n max_value = 1\n min_value = 1\n fee = 1\n}\n", errors.TypeConfig},
		{"duplicate rule", "default_vat_rate = 22\nmin_fee = 1\nrule \"8517\" {}\nrule \"8517\" {}\n", errors.TypeConfig},
		{"electronics without fee", "default_vat_rate = 22\nmin_fee = 1\nelectronics_prefixes = [\"8517\"]\n", errors.TypeConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHCL([]byte(tt.src), "bad.hcl")
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.typ), err.Error())
		})
	}
}

func TestLoadHCLMissingFile(t *testing.T) {
	_, err := LoadHCL(filepath.Join(t.TempDir(), "absent.hcl"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}

func TestLoadHCLFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.hcl")
	require.NoError(t, os.WriteFile(path, []byte("default_vat_rate = 22\nmin_fee = 1231\n"), 0o644))
	s, err := LoadHCL(path)
	require.NoError(t, err)
	assert.Empty(t, s.Rules())
}
