package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meikuraledutech/flowchart"
)

const touchByShowIfSQL = `UPDATE procedures SET last_modified = NOW()
WHERE id = (SELECT p.procedure_id FROM pages p JOIN show_ifs s ON s.page_id = p.id WHERE s.id = $1)`

// checkShowIf rejects cyclic trees, and criteria refs outside CreateProcedure.
func checkShowIf(sh *flowchart.ShowIf) error {
	var ref string
	err := flowchart.WalkConditions(sh.Conditions, func(n *flowchart.ConditionalNode) {
		if n.CriteriaRef != "" && ref == "" {
			ref = n.CriteriaRef
		}
	})
	if err != nil {
		return err
	}
	if ref != "" {
		return fmt.Errorf("%w: %q", flowchart.ErrUnresolvedRef, ref)
	}
	return nil
}

func insertShowIf(ctx context.Context, q querier, pageID int64, sh *flowchart.ShowIf) error {
	conditions, err := json.Marshal(sh.Conditions)
	if err != nil {
		return fmt.Errorf("flowchart: encode conditions: %w", err)
	}
	if err := q.QueryRow(ctx,
		`INSERT INTO show_ifs (page_id, conditions) VALUES ($1, $2) RETURNING id`,
		pageID, conditions,
	).Scan(&sh.ID); err != nil {
		return fmt.Errorf("flowchart: insert show_if: %w", err)
	}
	return nil
}

// AddShowIf attaches a visibility rule to a page.
// Returns the show-if ID, or ErrPageNotFound if the page doesn't exist.
func (s *PGStore) AddShowIf(ctx context.Context, pageID int64, sh *flowchart.ShowIf) (int64, error) {
	if err := checkShowIf(sh); err != nil {
		return 0, err
	}
	if err := insertShowIf(ctx, s.db, pageID, sh); err != nil {
		if isForeignKeyViolation(err, "") {
			return 0, flowchart.ErrPageNotFound
		}
		return 0, err
	}
	if err := touchByPage(ctx, s.db, pageID); err != nil {
		return 0, err
	}
	return sh.ID, nil
}

// UpdateShowIf replaces the condition tree of a show-if.
// Returns ErrShowIfNotFound if the show-if doesn't exist.
func (s *PGStore) UpdateShowIf(ctx context.Context, sh *flowchart.ShowIf) error {
	if err := checkShowIf(sh); err != nil {
		return err
	}
	conditions, err := json.Marshal(sh.Conditions)
	if err != nil {
		return fmt.Errorf("flowchart: encode conditions: %w", err)
	}
	ct, err := s.db.Exec(ctx,
		`UPDATE show_ifs SET conditions = $1, last_modified = NOW() WHERE id = $2`,
		conditions, sh.ID,
	)
	if err != nil {
		return fmt.Errorf("flowchart: update show_if: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return flowchart.ErrShowIfNotFound
	}
	if _, err := s.db.Exec(ctx, touchByShowIfSQL, sh.ID); err != nil {
		return fmt.Errorf("flowchart: touch procedure: %w", err)
	}
	return nil
}

// DeleteShowIf deletes a show-if by its ID.
// No error if the show-if doesn't exist.
func (s *PGStore) DeleteShowIf(ctx context.Context, showIfID int64) error {
	if _, err := s.db.Exec(ctx, touchByShowIfSQL, showIfID); err != nil {
		return fmt.Errorf("flowchart: touch procedure: %w", err)
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM show_ifs WHERE id = $1`, showIfID); err != nil {
		return fmt.Errorf("flowchart: delete show_if: %w", err)
	}
	return nil
}
