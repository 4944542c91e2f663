package postgres

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/flowchart"
)

const touchByPageSQL = `UPDATE procedures SET last_modified = NOW()
WHERE id = (SELECT procedure_id FROM pages WHERE id = $1)`

func touchByPage(ctx context.Context, q querier, pageID int64) error {
	if _, err := q.Exec(ctx, touchByPageSQL, pageID); err != nil {
		return fmt.Errorf("flowchart: touch procedure: %w", err)
	}
	return nil
}

// AddPage appends a page after the procedure's last page, together with the
// elements and show-ifs it carries, in one transaction.
// Returns the page ID, or ErrProcedureNotFound if the procedure doesn't exist.
func (s *PGStore) AddPage(ctx context.Context, procedureID int64, page *flowchart.Page) (int64, error) {
	for i := range page.ShowIfs {
		if err := checkShowIf(&page.ShowIfs[i]); err != nil {
			return 0, err
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("flowchart: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO pages (procedure_id, display_index)
		SELECT $1, COALESCE(MAX(display_index) + 1, 0) FROM pages WHERE procedure_id = $1
		RETURNING id, display_index`,
		procedureID,
	).Scan(&page.ID, &page.DisplayIndex)
	if err != nil {
		if isForeignKeyViolation(err, "") {
			return 0, flowchart.ErrProcedureNotFound
		}
		return 0, fmt.Errorf("flowchart: insert page: %w", err)
	}

	for i := range page.Elements {
		if err := insertElement(ctx, tx, page.ID, &page.Elements[i]); err != nil {
			return 0, err
		}
	}
	for i := range page.ShowIfs {
		if err := insertShowIf(ctx, tx, page.ID, &page.ShowIfs[i]); err != nil {
			return 0, err
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE procedures SET last_modified = NOW() WHERE id = $1`, procedureID); err != nil {
		return 0, fmt.Errorf("flowchart: touch procedure: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("flowchart: commit: %w", err)
	}

	return page.ID, nil
}

// UpdatePage moves a page to a new display_index. Graphs follow the new order
// the next time the procedure is loaded.
// Returns ErrPageNotFound if the page doesn't exist.
func (s *PGStore) UpdatePage(ctx context.Context, page *flowchart.Page) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE pages SET display_index = $1, last_modified = NOW() WHERE id = $2`,
		page.DisplayIndex, page.ID,
	)
	if err != nil {
		return fmt.Errorf("flowchart: update page: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return flowchart.ErrPageNotFound
	}
	return touchByPage(ctx, s.db, page.ID)
}

// DeletePage deletes a page; its elements and show-ifs are cascade-deleted by the DB.
// No error if the page doesn't exist.
func (s *PGStore) DeletePage(ctx context.Context, pageID int64) error {
	if err := touchByPage(ctx, s.db, pageID); err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM pages WHERE id = $1`, pageID); err != nil {
		return fmt.Errorf("flowchart: delete page: %w", err)
	}
	return nil
}
