package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
)

func TestRewrite(t *testing.T) {
	names := map[string]string{
		"calculation_1": "[Profit Ratio]",
		"sales":         "[Sales]",
		"sales amount":  "[Net Sales]",
		"cost":          "[Total Cost]",
	}

	tests := []struct {
		name    string
		formula string
		want    string
	}{
		{"simple", "[Sales]/[Cost]", "[Sales]/[Total Cost]"},
		{"case insensitive", "[SALES] + [cost]", "[Sales] + [Total Cost]"},
		{"whole token wins over prefix", "[Sales Amount] - [Sales]", "[Net Sales] - [Sales]"},
		{"unknown token untouched", "[Sales] * [Mystery]", "[Sales] * [Mystery]"},
		{"internal id", "IIF([Calculation_1] > 0.2, 'good', 'bad')", "IIF([Profit Ratio] > 0.2, 'good', 'bad')"},
		{"repeated token", "[Sales]+[Sales]", "[Sales]+[Sales]"},
		{"no brackets", "1 + 2", "1 + 2"},
		{"empty", "", ""},
		{"unterminated bracket", "[Sales] + [Cost", "[Sales] + [Cost"},
		{"empty token", "[] + [Sales]", "[] + [Sales]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rewrite(tt.formula, names))
		})
	}
}

func TestRewriteIdempotent(t *testing.T) {
	names := map[string]string{
		"calculation_1": "[Profit Ratio]",
		"sales":         "[Sales]",
		"cost":          "[Total Cost]",
	}

	formulas := []string{
		"[Calculation_1] + [Sales]/[Cost]",
		"IIF([sales] > 0, [COST], 0)",
		"[Unknown] * 2",
	}

	for _, formula := range formulas {
		once := Rewrite(formula, names)
		twice := Rewrite(once, names)
		assert.Equal(t, once, twice, "formula %q", formula)
	}
}

func TestRewriteAll(t *testing.T) {
	records := []*catalog.Field{
		{ID: "[Sales]", Caption: "Sales"},
		{ID: "[Calculation_1]", Caption: "Profit Ratio", Formula: "[Sales]/[Cost]", RawFormula: "[Sales]/[Cost]", Category: catalog.CategoryCalculated},
		{ID: "[Cost]", Caption: "Total Cost"},
	}
	names := DisplayNames(records)

	RewriteAll(records, names)

	assert.Empty(t, records[0].Formula, "records without formulas stay untouched")
	assert.Equal(t, "[Sales]/[Total Cost]", records[1].Formula)
	assert.Equal(t, "[Sales]/[Cost]", records[1].RawFormula, "the original text is preserved")
}

func TestTokens(t *testing.T) {
	got := Tokens("IIF([Sales] > [Target], [Sales], 0)")
	require.Equal(t, []string{"Sales", "Target", "Sales"}, got)

	assert.Empty(t, Tokens("1 + 2"))
	assert.Empty(t, Tokens(""))
	assert.Equal(t, []string{"A"}, Tokens("[A] + [B"))
}
