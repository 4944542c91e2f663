package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/flowchart"
)

const conceptColumns = `id, uuid, name, display_name, description, data_type, mime_type, value_constraint, created_at, last_modified`

type scanner interface {
	Scan(dest ...any) error
}

func scanConcept(row scanner, c *flowchart.Concept) error {
	var conceptUUID string
	if err := row.Scan(&c.ID, &conceptUUID, &c.Name, &c.DisplayName, &c.Description,
		&c.DataType, &c.MimeType, &c.Constraint, &c.Created, &c.LastModified); err != nil {
		return err
	}
	var err error
	c.UUID, err = uuid.Parse(conceptUUID)
	return err
}

// CreateConcept stores a new concept; a missing UUID is generated.
func (s *PGStore) CreateConcept(ctx context.Context, c *flowchart.Concept) (*flowchart.Concept, error) {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if err := s.db.QueryRow(ctx,
		`INSERT INTO concepts (uuid, name, display_name, description, data_type, mime_type, value_constraint)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, last_modified`,
		c.UUID.String(), c.Name, c.DisplayName, c.Description, c.DataType, c.MimeType, c.Constraint,
	).Scan(&c.ID, &c.Created, &c.LastModified); err != nil {
		return nil, fmt.Errorf("flowchart: insert concept: %w", err)
	}
	return c, nil
}

// GetConcept returns nil, nil if the concept doesn't exist.
func (s *PGStore) GetConcept(ctx context.Context, id int64) (*flowchart.Concept, error) {
	c := &flowchart.Concept{}
	err := scanConcept(s.db.QueryRow(ctx, `SELECT `+conceptColumns+` FROM concepts WHERE id = $1`, id), c)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("flowchart: get concept: %w", err)
	}
	return c, nil
}

// ListConcepts returns every concept ordered by name.
func (s *PGStore) ListConcepts(ctx context.Context) ([]flowchart.Concept, error) {
	rows, err := s.db.Query(ctx, `SELECT `+conceptColumns+` FROM concepts ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("flowchart: list concepts: %w", err)
	}
	defer rows.Close()

	concepts := []flowchart.Concept{}
	for rows.Next() {
		var c flowchart.Concept
		if err := scanConcept(rows, &c); err != nil {
			return nil, fmt.Errorf("flowchart: scan concept: %w", err)
		}
		concepts = append(concepts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("flowchart: rows concepts: %w", err)
	}
	return concepts, nil
}

// UpdateConcept updates every editable field of a concept.
// Returns ErrConceptNotFound if the concept doesn't exist.
func (s *PGStore) UpdateConcept(ctx context.Context, c *flowchart.Concept) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE concepts SET name = $1, display_name = $2, description = $3, data_type = $4,
		mime_type = $5, value_constraint = $6, last_modified = NOW() WHERE id = $7`,
		c.Name, c.DisplayName, c.Description, c.DataType, c.MimeType, c.Constraint, c.ID,
	)
	if err != nil {
		return fmt.Errorf("flowchart: update concept: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return flowchart.ErrConceptNotFound
	}
	return nil
}

// DeleteConcept removes a concept. Elements linked to it keep their data and
// lose the link.
// No error if the concept doesn't exist.
func (s *PGStore) DeleteConcept(ctx context.Context, id int64) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM concepts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("flowchart: delete concept: %w", err)
	}
	return nil
}
