package fields

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldlens-labs/fieldlens/internal/workbook"
	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
)

func mustDecode(t *testing.T, doc string) *workbook.Element {
	t.Helper()
	root, err := workbook.Decode(strings.NewReader(doc))
	require.NoError(t, err)
	return root
}

func TestCollectColumns(t *testing.T) {
	root := mustDecode(t, `<workbook>
  <datasources>
    <datasource name='federated.sales' caption='Sales DS'>
      <column name='[Sales]' caption='Sales' datatype='real' role='measure' type='quantitative' default-aggregation='Sum'/>
      <column name='[Region]' datatype='string' role='dimension' type='nominal' semantic-role='[State].[Name]' hidden='True'>
        <desc><formatted-text><run>Shipping</run><run>region.</run></formatted-text></desc>
      </column>
      <column name='[Profit Ratio]' caption='Profit Ratio' datatype='real' role='measure'>
        <calculation class='tableau' formula='[Sales]/[Cost]'/>
      </column>
    </datasource>
  </datasources>
</workbook>`)

	records := Collect(root)
	require.Len(t, records, 3)

	sales := records[0]
	assert.Equal(t, "[Sales]", sales.ID)
	assert.Equal(t, "[Sales]", sales.Name)
	assert.Equal(t, "Sales", sales.Caption)
	assert.Equal(t, "federated.sales", sales.DatasourceName)
	assert.Equal(t, "Sales DS", sales.DatasourceCaption)
	assert.Equal(t, "real", sales.DataType)
	assert.Equal(t, "measure", sales.Role)
	assert.Equal(t, "Sum", sales.DefaultAggregation)
	assert.True(t, sales.Quantitative)
	assert.False(t, sales.Nominal)
	assert.Equal(t, catalog.CategoryDefault, sales.Category)
	assert.Equal(t, 0, sales.Sequence)

	region := records[1]
	assert.Equal(t, "Region", region.Caption, "caption falls back to the stripped name")
	assert.True(t, region.Hidden)
	assert.True(t, region.Nominal)
	assert.Equal(t, "[State].[Name]", region.SemanticRole)
	assert.Equal(t, "Shipping region.", region.Description)
	assert.Equal(t, 1, region.Sequence)

	ratio := records[2]
	assert.Equal(t, catalog.CategoryCalculated, ratio.Category)
	assert.Equal(t, "[Sales]/[Cost]", ratio.Formula)
	assert.Equal(t, "[Sales]/[Cost]", ratio.RawFormula)
}

func TestCollectIdentifierSynthesis(t *testing.T) {
	root := mustDecode(t, `<datasource name='ds'>
  <column id='[Explicit]' name='[Other]'/>
  <column name='Bare'/>
  <column name='[Wrapped]'/>
  <column datatype='real'/>
</datasource>`)

	records := Collect(root)
	require.Len(t, records, 4)

	assert.Equal(t, "[Explicit]", records[0].ID, "explicit id wins over name")
	assert.Equal(t, "[Bare]", records[1].ID)
	assert.Equal(t, "[Wrapped]", records[2].ID, "bracketed names are not wrapped twice")
	assert.Equal(t, "[col_3]", records[3].ID)
	assert.Equal(t, "", records[3].Name)
	assert.Equal(t, "", records[3].Caption)
}

func TestCollectParameters(t *testing.T) {
	root := mustDecode(t, `<workbook>
  <datasources>
    <datasource name='Parameters' caption='Parameters'>
      <column name='[Threshold]' caption='Threshold' datatype='integer'>
        <calculation class='tableau' formula='0.25'/>
      </column>
      <param name='[Threshold]' caption='Ignored Duplicate' datatype='integer'/>
      <param name='[Target Year]' caption='Target Year' alias='TY' datatype='integer'/>
    </datasource>
    <datasource name='sales' caption='Sales DS'>
      <column name='[Sales]' caption='Sales' datatype='real'/>
      <param name='[Never Collected]'/>
    </datasource>
  </datasources>
</workbook>`)

	records := Collect(root)
	require.Len(t, records, 3)

	threshold := records[0]
	assert.Equal(t, catalog.CategoryParameter, threshold.Category,
		"Parameters membership beats formula presence")
	assert.Equal(t, "Threshold", threshold.Caption)

	year := records[1]
	assert.Equal(t, "[Target Year]", year.ID)
	assert.Equal(t, catalog.CategoryParameter, year.Category)
	assert.Equal(t, "TY", year.Alias)
	assert.Equal(t, "integer", year.DataType)

	assert.Equal(t, "Sales", records[2].Caption,
		"param elements outside the Parameters datasource contribute nothing")
}

func TestCollectParametersCaseInsensitive(t *testing.T) {
	root := mustDecode(t, `<datasource name='PARAMETERS'>
  <column name='[P]'/>
</datasource>`)

	records := Collect(root)
	require.Len(t, records, 1)
	assert.Equal(t, catalog.CategoryParameter, records[0].Category)
}

func TestCollectDatasourceCaptionDefault(t *testing.T) {
	root := mustDecode(t, `<datasource name='raw.extract'>
  <column name='[A]'/>
</datasource>`)

	records := Collect(root)
	require.Len(t, records, 1)
	assert.Equal(t, "raw.extract", records[0].DatasourceCaption)
}

func TestCollectEmptyFormulaIsNotCalculated(t *testing.T) {
	root := mustDecode(t, `<datasource name='ds'>
  <column name='[A]'><calculation class='tableau'/></column>
</datasource>`)

	records := Collect(root)
	require.Len(t, records, 1)
	assert.Equal(t, catalog.CategoryDefault, records[0].Category)
	assert.Empty(t, records[0].Formula)
}

func TestCollectDegenerateInput(t *testing.T) {
	assert.Nil(t, Collect(nil))

	root := mustDecode(t, `<workbook><worksheets/></workbook>`)
	assert.Empty(t, Collect(root))

	root = mustDecode(t, `<workbook><datasource name='empty'/></workbook>`)
	assert.Empty(t, Collect(root))
}

func TestCollectSequenceSpansDatasources(t *testing.T) {
	root := mustDecode(t, `<workbook>
  <datasource name='a'><column name='[X]'/><column name='[Y]'/></datasource>
  <datasource name='b'><column name='[Z]'/></datasource>
</workbook>`)

	records := Collect(root)
	require.Len(t, records, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{records[0].Sequence, records[1].Sequence, records[2].Sequence})
}
