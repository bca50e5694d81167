package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
)

func field(id, caption, ds string, cat catalog.Category, seq int) *catalog.Field {
	return &catalog.Field{
		ID:                id,
		Name:              catalog.Strip(id),
		Caption:           caption,
		DatasourceName:    ds,
		DatasourceCaption: ds,
		Category:          cat,
		Sequence:          seq,
	}
}

func TestDisplayNames(t *testing.T) {
	records := []*catalog.Field{
		field("[Sales]", "Sales Amount", "sales", catalog.CategoryDefault, 0),
		field("[Calculation_1]", "Profit Ratio", "sales", catalog.CategoryCalculated, 1),
		field("[Unnamed]", "", "sales", catalog.CategoryDefault, 2),
	}

	names := DisplayNames(records)
	assert.Equal(t, "[Sales Amount]", names["sales"])
	assert.Equal(t, "[Profit Ratio]", names["calculation_1"])
	assert.Equal(t, "[Unnamed]", names["unnamed"], "caption falls back to name")
}

func TestDisplayNamesClaimPriority(t *testing.T) {
	calcFirst := []*catalog.Field{
		field("[X]", "Calc X", "a", catalog.CategoryCalculated, 0),
		field("[X]", "Column X", "b", catalog.CategoryDefault, 1),
	}
	assert.Equal(t, "[Calc X]", DisplayNames(calcFirst)["x"],
		"a later plain field never displaces a calculation")

	calcLast := []*catalog.Field{
		field("[X]", "Column X", "b", catalog.CategoryDefault, 0),
		field("[X]", "Calc X", "a", catalog.CategoryCalculated, 1),
	}
	assert.Equal(t, "[Calc X]", DisplayNames(calcLast)["x"],
		"a calculation displaces an earlier plain field")

	paramWins := []*catalog.Field{
		field("[X]", "Column X", "b", catalog.CategoryDefault, 0),
		field("[X]", "Param X", "Parameters", catalog.CategoryParameter, 1),
	}
	assert.Equal(t, "[Param X]", DisplayNames(paramWins)["x"])
}

func TestDedupeParametersWin(t *testing.T) {
	records := []*catalog.Field{
		field("[Threshold]", "Threshold Column", "sales", catalog.CategoryDefault, 0),
		field("[Sales]", "Sales", "sales", catalog.CategoryDefault, 1),
		field("[Threshold]", "Threshold", "Parameters", catalog.CategoryParameter, 2),
	}

	kept := Dedupe(records)
	require.Len(t, kept, 2)
	assert.Equal(t, "Threshold", kept[0].Caption,
		"the Parameters record survives even when collected later")
	assert.Equal(t, catalog.CategoryParameter, kept[0].Category)
	assert.Equal(t, "Sales", kept[1].Caption)
}

func TestDedupeKeepsFirstByCollectionOrder(t *testing.T) {
	records := []*catalog.Field{
		field("[Sales]", "Sales A", "a", catalog.CategoryDefault, 0),
		field("[sales]", "Sales B", "b", catalog.CategoryDefault, 1),
	}

	kept := Dedupe(records)
	require.Len(t, kept, 1)
	assert.Equal(t, "Sales A", kept[0].Caption, "identifier matching ignores case")
}

func TestDedupeLeavesDistinctRecords(t *testing.T) {
	records := []*catalog.Field{
		field("[A]", "A", "ds", catalog.CategoryDefault, 0),
		field("[B]", "B", "ds", catalog.CategoryDefault, 1),
	}
	assert.Len(t, Dedupe(records), 2)
}

func TestSort(t *testing.T) {
	records := []*catalog.Field{
		field("[D]", "D", "Beta", catalog.CategoryDefault, 0),
		field("[C]", "C", "Alpha", catalog.CategoryDefault, 1),
		field("[Calc]", "Calc", "Beta", catalog.CategoryCalculated, 2),
		field("[P]", "P", "Parameters", catalog.CategoryParameter, 3),
		field("[A2]", "A2", "Alpha", catalog.CategoryDefault, 4),
	}
	records[4].Name = "C" // same name as records[1]: sequence breaks the tie

	Sort(records)

	ids := make([]string, len(records))
	for i, f := range records {
		ids[i] = f.ID
	}
	assert.Equal(t, []string{"[P]", "[Calc]", "[C]", "[A2]", "[D]"}, ids)
}
