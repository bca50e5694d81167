package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
)

// SaveAnalysis persists a workbook analysis, replacing any previous analysis
// stored under the same workbook name. Field and edge rows are rewritten
// wholesale inside a single transaction so readers never observe a partial
// catalog.
func (s *SQLiteStore) SaveAnalysis(meta WorkbookRecord, a *catalog.Analysis) (*WorkbookRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if a == nil {
		return nil, fmt.Errorf("analysis is nil")
	}

	rec := meta
	rec.FieldCount = len(a.Fields)
	rec.CalcCount = len(a.Calcs)
	rec.EdgeCount = len(a.Relationships)
	rec.AnalyzedAt = time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existingID string
	err = tx.QueryRow(`SELECT id FROM workbooks WHERE name = ?`, rec.Name).Scan(&existingID)
	switch {
	case err == sql.ErrNoRows:
		rec.ID = generateID()
		_, err = tx.Exec(`
			INSERT INTO workbooks (id, name, path, version, strategy, field_count, calc_count, edge_count, analyzed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.Name, rec.Path, rec.Version, rec.Strategy,
			rec.FieldCount, rec.CalcCount, rec.EdgeCount, rec.AnalyzedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert workbook: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to look up workbook: %w", err)
	default:
		rec.ID = existingID
		_, err = tx.Exec(`
			UPDATE workbooks
			SET path = ?, version = ?, strategy = ?, field_count = ?, calc_count = ?, edge_count = ?, analyzed_at = ?
			WHERE id = ?`,
			rec.Path, rec.Version, rec.Strategy,
			rec.FieldCount, rec.CalcCount, rec.EdgeCount, rec.AnalyzedAt, rec.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to update workbook: %w", err)
		}
		if _, err = tx.Exec(`DELETE FROM fields WHERE workbook_id = ?`, rec.ID); err != nil {
			return nil, fmt.Errorf("failed to clear fields: %w", err)
		}
		if _, err = tx.Exec(`DELETE FROM edges WHERE workbook_id = ?`, rec.ID); err != nil {
			return nil, fmt.Errorf("failed to clear edges: %w", err)
		}
	}

	fieldStmt, err := tx.Prepare(`
		INSERT INTO fields (
			workbook_id, position, field_id, name, caption, alias,
			datasource_name, datasource_caption, role, datatype,
			default_aggregation, semantic_role, nominal, ordinal, quantitative,
			hidden, description, formula, raw_formula, category, sequence
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare field insert: %w", err)
	}
	defer fieldStmt.Close()

	for i, f := range a.Fields {
		_, err = fieldStmt.Exec(
			rec.ID, i, f.ID, f.Name, f.Caption, f.Alias,
			f.DatasourceName, f.DatasourceCaption, f.Role, f.DataType,
			f.DefaultAggregation, f.SemanticRole,
			boolToInt(f.Nominal), boolToInt(f.Ordinal), boolToInt(f.Quantitative),
			boolToInt(f.Hidden), f.Description, f.Formula, f.RawFormula,
			string(f.Category), f.Sequence)
		if err != nil {
			return nil, fmt.Errorf("failed to insert field %q: %w", f.Caption, err)
		}
	}

	edgeStmt, err := tx.Prepare(`
		INSERT INTO edges (workbook_id, position, from_caption, to_caption)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare edge insert: %w", err)
	}
	defer edgeStmt.Close()

	for i, e := range a.Relationships {
		if _, err = edgeStmt.Exec(rec.ID, i, e.From, e.To); err != nil {
			return nil, fmt.Errorf("failed to insert edge %q -> %q: %w", e.From, e.To, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit analysis: %w", err)
	}

	return &rec, nil
}

// GetWorkbook returns the stored record for a workbook name, or nil if the
// workbook has never been analyzed.
func (s *SQLiteStore) GetWorkbook(name string) (*WorkbookRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var rec WorkbookRecord
	err := s.db.QueryRow(`
		SELECT id, name, path, version, strategy, field_count, calc_count, edge_count, analyzed_at
		FROM workbooks WHERE name = ?`, name).
		Scan(&rec.ID, &rec.Name, &rec.Path, &rec.Version, &rec.Strategy,
			&rec.FieldCount, &rec.CalcCount, &rec.EdgeCount, &rec.AnalyzedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workbook: %w", err)
	}

	return &rec, nil
}

// ListWorkbooks returns all stored workbook records ordered by name.
func (s *SQLiteStore) ListWorkbooks() ([]*WorkbookRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(`
		SELECT id, name, path, version, strategy, field_count, calc_count, edge_count, analyzed_at
		FROM workbooks ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workbooks: %w", err)
	}
	defer rows.Close()

	var records []*WorkbookRecord
	for rows.Next() {
		var rec WorkbookRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Path, &rec.Version, &rec.Strategy,
			&rec.FieldCount, &rec.CalcCount, &rec.EdgeCount, &rec.AnalyzedAt); err != nil {
			return nil, fmt.Errorf("failed to scan workbook: %w", err)
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// DeleteWorkbook removes a workbook and all of its fields and edges.
// Deleting a workbook that does not exist is not an error.
func (s *SQLiteStore) DeleteWorkbook(name string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	rec, err := s.GetWorkbook(name)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.Exec(`DELETE FROM fields WHERE workbook_id = ?`, rec.ID); err != nil {
		return fmt.Errorf("failed to delete fields: %w", err)
	}
	if _, err = tx.Exec(`DELETE FROM edges WHERE workbook_id = ?`, rec.ID); err != nil {
		return fmt.Errorf("failed to delete edges: %w", err)
	}
	if _, err = tx.Exec(`DELETE FROM workbooks WHERE id = ?`, rec.ID); err != nil {
		return fmt.Errorf("failed to delete workbook: %w", err)
	}

	return tx.Commit()
}

// ListFields reconstructs the stored fields for a workbook in their original
// presentation order.
func (s *SQLiteStore) ListFields(workbookID string) ([]*catalog.Field, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(`
		SELECT field_id, name, caption, alias,
			datasource_name, datasource_caption, role, datatype,
			default_aggregation, semantic_role, nominal, ordinal, quantitative,
			hidden, description, formula, raw_formula, category, sequence
		FROM fields WHERE workbook_id = ? ORDER BY position`, workbookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fields: %w", err)
	}
	defer rows.Close()

	var fields []*catalog.Field
	for rows.Next() {
		var f catalog.Field
		var category string
		var nominal, ordinal, quantitative, hidden int
		if err := rows.Scan(&f.ID, &f.Name, &f.Caption, &f.Alias,
			&f.DatasourceName, &f.DatasourceCaption, &f.Role, &f.DataType,
			&f.DefaultAggregation, &f.SemanticRole, &nominal, &ordinal, &quantitative,
			&hidden, &f.Description, &f.Formula, &f.RawFormula, &category, &f.Sequence); err != nil {
			return nil, fmt.Errorf("failed to scan field: %w", err)
		}
		f.Nominal = nominal != 0
		f.Ordinal = ordinal != 0
		f.Quantitative = quantitative != 0
		f.Hidden = hidden != 0
		f.Category = catalog.Category(category)
		fields = append(fields, &f)
	}

	return fields, rows.Err()
}

// ListEdges reconstructs the stored dependency edges for a workbook in their
// original derivation order, duplicates included.
func (s *SQLiteStore) ListEdges(workbookID string) ([]catalog.Edge, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(`
		SELECT from_caption, to_caption
		FROM edges WHERE workbook_id = ? ORDER BY position`, workbookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list edges: %w", err)
	}
	defer rows.Close()

	var edges []catalog.Edge
	for rows.Next() {
		var e catalog.Edge
		if err := rows.Scan(&e.From, &e.To); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		edges = append(edges, e)
	}

	return edges, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
