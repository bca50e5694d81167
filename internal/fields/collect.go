// Package fields implements the record collection, identity resolution
// and formula rewriting stages of workbook analysis.
//
// Collection never fails on content: missing attributes degrade to empty
// values and unexpected tree shapes simply contribute no records.
package fields

import (
	"fmt"
	"strings"

	"github.com/fieldlens-labs/fieldlens/internal/workbook"
	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
)

// parametersDatasource is the folded name of the datasource that holds
// parameter definitions.
const parametersDatasource = "parameters"

// Collect walks the document tree and returns one raw field record per
// column and parameter element, in traversal order. Sequence numbers are
// assigned globally across datasources.
func Collect(root *workbook.Element) []*catalog.Field {
	c := &collector{seen: make(map[recordKey]struct{})}
	if root == nil {
		return nil
	}
	for _, ds := range root.FindAll("datasource") {
		c.datasource(ds)
	}
	return c.records
}

// recordKey identifies a record within one datasource; it guards param
// collection against columns already collected for the same identifier.
type recordKey struct {
	datasource string
	id         string
}

type collector struct {
	records []*catalog.Field
	seen    map[recordKey]struct{}
	seq     int
}

func (c *collector) datasource(ds *workbook.Element) {
	name := ds.Attr("name")
	caption := ds.Attr("caption")
	if caption == "" {
		caption = name
	}
	isParams := catalog.Fold(name) == parametersDatasource

	for _, col := range ds.ChildrenNamed("column") {
		c.column(col, name, caption, isParams)
	}
	if isParams {
		for _, p := range ds.ChildrenNamed("param") {
			c.param(p, name, caption)
		}
	}
}

func (c *collector) column(el *workbook.Element, dsName, dsCaption string, isParams bool) {
	f := &catalog.Field{
		Name:               el.Attr("name"),
		Alias:              el.Attr("alias"),
		DatasourceName:     dsName,
		DatasourceCaption:  dsCaption,
		Role:               el.Attr("role"),
		DataType:           el.Attr("datatype"),
		DefaultAggregation: el.Attr("default-aggregation"),
		SemanticRole:       el.Attr("semantic-role"),
		Hidden:             strings.EqualFold(el.Attr("hidden"), "true"),
		Description:        descText(el),
		Sequence:           c.nextSeq(),
	}
	f.ID = c.identify(el.Attr("id"), f.Name, f.Sequence)
	f.Caption = caption(el.Attr("caption"), f.Name)
	setTypeFlags(f, el.Attr("type"))

	if calc := el.Child("calculation"); calc != nil {
		f.Formula = calc.Attr("formula")
		f.RawFormula = f.Formula
	}

	switch {
	case isParams:
		f.Category = catalog.CategoryParameter
	case f.Formula != "":
		f.Category = catalog.CategoryCalculated
	default:
		f.Category = catalog.CategoryDefault
	}

	c.add(f)
}

func (c *collector) param(el *workbook.Element, dsName, dsCaption string) {
	seq := c.nextSeq()
	id := c.identify("", el.Attr("name"), seq)

	// Columns win over params within the Parameters datasource.
	if _, ok := c.seen[recordKey{datasource: dsName, id: catalog.Fold(id)}]; ok {
		return
	}

	f := &catalog.Field{
		ID:                id,
		Name:              el.Attr("name"),
		Caption:           caption(el.Attr("caption"), el.Attr("name")),
		Alias:             el.Attr("alias"),
		DatasourceName:    dsName,
		DatasourceCaption: dsCaption,
		DataType:          el.Attr("datatype"),
		Category:          catalog.CategoryParameter,
		Sequence:          seq,
	}
	c.add(f)
}

func (c *collector) add(f *catalog.Field) {
	c.records = append(c.records, f)
	c.seen[recordKey{datasource: f.DatasourceName, id: catalog.Fold(f.ID)}] = struct{}{}
}

func (c *collector) nextSeq() int {
	seq := c.seq
	c.seq++
	return seq
}

// identify settles the record identifier: the explicit id attribute when
// present, the bracketed name otherwise, a sequence-derived placeholder
// as the last resort.
func (c *collector) identify(id, name string, seq int) string {
	switch {
	case id != "":
		return id
	case name != "":
		return catalog.Bracket(name)
	default:
		return fmt.Sprintf("[col_%d]", seq)
	}
}

// caption settles the display caption. Workbooks only carry captions for
// renamed fields; everything else displays under its name, brackets
// stripped.
func caption(caption, name string) string {
	if caption != "" {
		return caption
	}
	return catalog.Strip(name)
}

func setTypeFlags(f *catalog.Field, typ string) {
	switch catalog.Fold(typ) {
	case "nominal":
		f.Nominal = true
	case "ordinal":
		f.Ordinal = true
	case "quantitative":
		f.Quantitative = true
	}
}

// descText flattens the description markup (desc > formatted-text > run)
// into plain text.
func descText(el *workbook.Element) string {
	desc := el.Child("desc")
	if desc == nil {
		return ""
	}
	var parts []string
	for _, run := range desc.FindAll("run") {
		if text := run.Text(); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
