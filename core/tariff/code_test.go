package tariff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "8517120000", Normalize("8517 12 00 00"))
	assert.Equal(t, "8517120000", Normalize(" 8517\t12 0000\n"))
	assert.Equal(t, "", Normalize("   "))
}

func TestIsFullCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"8517120000", true},
		{"8517 12 00 00", true},
		{"851712000", false},
		{"85171200001", false},
		{"85171200ab", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFullCode(tt.code))
		})
	}
}

func TestIsCodeQuery(t *testing.T) {
	assert.True(t, IsCodeQuery("8517120000"))
	assert.True(t, IsCodeQuery("8517 12 00 00"))
	assert.False(t, IsCodeQuery("8517 12 00"))
	assert.False(t, IsCodeQuery("8517-12-00-00"))
	assert.False(t, IsCodeQuery("смартфон 8517120000"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "8517 12 00 00", Format("8517120000"))
	assert.Equal(t, "8517 12 00 00", Format("85 17 12 00 00"))
	assert.Equal(t, "8517", Format("85 17"))
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "8517", Prefix("8517 12 00 00"))
	assert.Equal(t, "85", Prefix("85"))
}

func TestHierarchyOf(t *testing.T) {
	h := HierarchyOf("6302 31 00 00")
	assert.Equal(t, Hierarchy{
		Group:         "63",
		Position:      "6302",
		Subsection:    "630231",
		Subsubsection: "6302310000",
	}, h)
}

func TestSectionOf(t *testing.T) {
	tests := map[string]string{
		"0101210000": "I",
		"0901110000": "II",
		"1509100000": "III",
		"2203000000": "IV",
		"6302310000": "XI",
		"7701000000": "XV",
		"8517120000": "XVI",
		"8703210000": "XVII",
		"9403100000": "XX",
		"9701100000": "XXI",
		"9801000000": "",
		"0001000000": "",
	}
	for code, want := range tests {
		assert.Equal(t, want, SectionOf(code), code)
	}
}

func TestExtract(t *testing.T) {
	text := "Смартфон: 8517 12 00 00. Кофе 0901210000, повтор 8517120000 и 6302  31 00 00"
	assert.Equal(t, []string{"8517 12 00 00", "0901 21 00 00", "6302 31 00 00"}, Extract(text, 0))
	assert.Equal(t, []string{"8517 12 00 00"}, Extract(text, 1))
	assert.Empty(t, Extract("нет кодов 12345", 10))
}
