package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/meikuraledutech/flowchart"
)

const touchByElementSQL = `UPDATE procedures SET last_modified = NOW()
WHERE id = (SELECT p.procedure_id FROM pages p JOIN elements e ON e.page_id = p.id WHERE e.id = $1)`

const conceptForeignKey = "elements_concept_id_fkey"

func insertElement(ctx context.Context, q querier, pageID int64, el *flowchart.Element) error {
	err := q.QueryRow(ctx,
		`INSERT INTO elements (page_id, display_index, element_type, question, answer, choices, required,
		image, audio, action, mime_type, concept_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`,
		pageID, el.DisplayIndex, el.ElementType, el.Question, el.Answer, el.Choices, el.Required,
		el.Image, el.Audio, el.Action, el.MimeType, nullID(el.ConceptID),
	).Scan(&el.ID)
	if err != nil {
		if isForeignKeyViolation(err, conceptForeignKey) {
			return flowchart.ErrConceptNotFound
		}
		return fmt.Errorf("flowchart: insert element: %w", err)
	}
	return nil
}

// AddElement inserts a single element into a page.
// Returns the element ID, or ErrPageNotFound if the page doesn't exist.
func (s *PGStore) AddElement(ctx context.Context, pageID int64, el *flowchart.Element) (int64, error) {
	if err := insertElement(ctx, s.db, pageID, el); err != nil {
		if isForeignKeyViolation(err, "") {
			return 0, flowchart.ErrPageNotFound
		}
		return 0, err
	}
	if err := touchByPage(ctx, s.db, pageID); err != nil {
		return 0, err
	}
	return el.ID, nil
}

// UpdateElement updates every field of an existing element.
// Returns ErrElementNotFound if the element doesn't exist.
func (s *PGStore) UpdateElement(ctx context.Context, el *flowchart.Element) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE elements SET display_index = $1, element_type = $2, question = $3, answer = $4,
		choices = $5, required = $6, image = $7, audio = $8, action = $9, mime_type = $10,
		concept_id = $11, last_modified = NOW() WHERE id = $12`,
		el.DisplayIndex, el.ElementType, el.Question, el.Answer, el.Choices, el.Required,
		el.Image, el.Audio, el.Action, el.MimeType, nullID(el.ConceptID), el.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err, conceptForeignKey) {
			return flowchart.ErrConceptNotFound
		}
		return fmt.Errorf("flowchart: update element: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return flowchart.ErrElementNotFound
	}
	if _, err := s.db.Exec(ctx, touchByElementSQL, el.ID); err != nil {
		return fmt.Errorf("flowchart: touch procedure: %w", err)
	}
	return nil
}

// DeleteElement deletes an element by its ID.
// Show-if criteria pointing at it become dangling and are skipped when graphing.
// No error if the element doesn't exist.
func (s *PGStore) DeleteElement(ctx context.Context, elementID int64) error {
	if _, err := s.db.Exec(ctx, touchByElementSQL, elementID); err != nil {
		return fmt.Errorf("flowchart: touch procedure: %w", err)
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM elements WHERE id = $1`, elementID); err != nil {
		return fmt.Errorf("flowchart: delete element: %w", err)
	}
	return nil
}

// nullID stores a zero id as NULL.
func nullID(id int64) any {
	if id <= 0 {
		return nil
	}
	return id
}

// isForeignKeyViolation reports a missing parent row. An empty constraint
// matches any foreign key.
func isForeignKeyViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23503" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
