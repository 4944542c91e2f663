package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/flowchart"
)

// CreateProcedure saves a full procedure (pages, elements, show-ifs) in one transaction.
// A missing UUID is generated and a zero version becomes 1.
// Criteria refs (ConditionalNode.CriteriaRef) are resolved to the ids of the elements carrying that Ref.
// Returns the procedure with all IDs filled in.
func (s *PGStore) CreateProcedure(ctx context.Context, p *flowchart.Procedure) (*flowchart.Procedure, error) {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	if p.Version == 0 {
		p.Version = 1
	}

	// Validate refs before touching the database.
	refs := make(map[string]bool)
	for _, pg := range p.Pages {
		for _, el := range pg.Elements {
			if el.Ref == "" {
				continue
			}
			if refs[el.Ref] {
				return nil, fmt.Errorf("flowchart: duplicate element ref %q", el.Ref)
			}
			refs[el.Ref] = true
		}
	}
	for _, pg := range p.Pages {
		for _, sh := range pg.ShowIfs {
			var unknown string
			err := flowchart.WalkConditions(sh.Conditions, func(n *flowchart.ConditionalNode) {
				if n.CriteriaRef != "" && !refs[n.CriteriaRef] && unknown == "" {
					unknown = n.CriteriaRef
				}
			})
			if err != nil {
				return nil, err
			}
			if unknown != "" {
				return nil, fmt.Errorf("flowchart: unknown criteria_ref %q", unknown)
			}
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("flowchart: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx,
		`INSERT INTO procedures (uuid, title, author, version) VALUES ($1, $2, $3, $4) RETURNING id, created_at, last_modified`,
		p.UUID.String(), p.Title, p.Author, p.Version,
	).Scan(&p.ID, &p.Created, &p.LastModified); err != nil {
		return nil, fmt.Errorf("flowchart: insert procedure: %w", err)
	}

	// Insert pages and elements, collecting ref → element ID.
	refMap := make(map[string]int64)
	for i := range p.Pages {
		pg := &p.Pages[i]
		if err := tx.QueryRow(ctx,
			`INSERT INTO pages (procedure_id, display_index) VALUES ($1, $2) RETURNING id`,
			p.ID, pg.DisplayIndex,
		).Scan(&pg.ID); err != nil {
			return nil, fmt.Errorf("flowchart: insert page %d: %w", i, err)
		}
		for j := range pg.Elements {
			el := &pg.Elements[j]
			if err := insertElement(ctx, tx, pg.ID, el); err != nil {
				return nil, err
			}
			if el.Ref != "" {
				refMap[el.Ref] = el.ID
			}
		}
	}

	// Show-ifs go last so criteria may point at elements on any page.
	for i := range p.Pages {
		pg := &p.Pages[i]
		for k := range pg.ShowIfs {
			sh := &pg.ShowIfs[k]
			_ = flowchart.WalkConditions(sh.Conditions, func(n *flowchart.ConditionalNode) {
				if n.CriteriaRef != "" {
					n.CriteriaElement = refMap[n.CriteriaRef]
					n.CriteriaRef = ""
				}
			})
			if err := insertShowIf(ctx, tx, pg.ID, sh); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("flowchart: commit: %w", err)
	}

	// Clear ref fields from response; they are not persisted.
	for i := range p.Pages {
		for j := range p.Pages[i].Elements {
			p.Pages[i].Elements[j].Ref = ""
		}
	}

	return p, nil
}

// GetProcedure retrieves a full procedure by its ID.
// Pages and elements are ordered by display_index.
// Returns nil, nil if not found.
func (s *PGStore) GetProcedure(ctx context.Context, id int64) (*flowchart.Procedure, error) {
	p := &flowchart.Procedure{Pages: []flowchart.Page{}}
	var procUUID string
	err := s.db.QueryRow(ctx,
		`SELECT id, uuid, title, author, version, created_at, last_modified FROM procedures WHERE id = $1`, id,
	).Scan(&p.ID, &procUUID, &p.Title, &p.Author, &p.Version, &p.Created, &p.LastModified)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("flowchart: get procedure: %w", err)
	}
	if p.UUID, err = uuid.Parse(procUUID); err != nil {
		return nil, fmt.Errorf("flowchart: parse uuid: %w", err)
	}

	// Pages.
	rows, err := s.db.Query(ctx,
		`SELECT id, display_index FROM pages WHERE procedure_id = $1 ORDER BY display_index, id`, id)
	if err != nil {
		return nil, fmt.Errorf("flowchart: query pages: %w", err)
	}
	defer rows.Close()

	pageAt := make(map[int64]int)
	for rows.Next() {
		pg := flowchart.Page{Elements: []flowchart.Element{}, ShowIfs: []flowchart.ShowIf{}}
		if err := rows.Scan(&pg.ID, &pg.DisplayIndex); err != nil {
			return nil, fmt.Errorf("flowchart: scan page: %w", err)
		}
		pageAt[pg.ID] = len(p.Pages)
		p.Pages = append(p.Pages, pg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("flowchart: rows pages: %w", err)
	}

	// Elements.
	rows, err = s.db.Query(ctx,
		`SELECT e.id, e.page_id, e.display_index, e.element_type, e.question, e.answer, e.choices, e.required,
		e.image, e.audio, e.action, e.mime_type, COALESCE(e.concept_id, 0)
		FROM elements e JOIN pages p ON p.id = e.page_id
		WHERE p.procedure_id = $1 ORDER BY e.display_index, e.id`, id)
	if err != nil {
		return nil, fmt.Errorf("flowchart: query elements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var el flowchart.Element
		var pageID int64
		if err := rows.Scan(&el.ID, &pageID, &el.DisplayIndex, &el.ElementType, &el.Question, &el.Answer, &el.Choices, &el.Required,
			&el.Image, &el.Audio, &el.Action, &el.MimeType, &el.ConceptID); err != nil {
			return nil, fmt.Errorf("flowchart: scan element: %w", err)
		}
		if i, ok := pageAt[pageID]; ok {
			p.Pages[i].Elements = append(p.Pages[i].Elements, el)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("flowchart: rows elements: %w", err)
	}

	// Show-ifs.
	rows, err = s.db.Query(ctx,
		`SELECT s.id, s.page_id, s.conditions
		FROM show_ifs s JOIN pages p ON p.id = s.page_id
		WHERE p.procedure_id = $1 ORDER BY s.id`, id)
	if err != nil {
		return nil, fmt.Errorf("flowchart: query show_ifs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sh flowchart.ShowIf
		var pageID int64
		var raw []byte
		if err := rows.Scan(&sh.ID, &pageID, &raw); err != nil {
			return nil, fmt.Errorf("flowchart: scan show_if: %w", err)
		}
		if err := json.Unmarshal(raw, &sh.Conditions); err != nil {
			return nil, fmt.Errorf("flowchart: decode show_if %d: %w", sh.ID, err)
		}
		if i, ok := pageAt[pageID]; ok {
			p.Pages[i].ShowIfs = append(p.Pages[i].ShowIfs, sh)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("flowchart: rows show_ifs: %w", err)
	}

	return p, nil
}

// ListProcedures returns every procedure without its pages, most recently modified first.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListProcedures(ctx context.Context) ([]flowchart.Procedure, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, uuid, title, author, version, created_at, last_modified FROM procedures ORDER BY last_modified DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("flowchart: list procedures: %w", err)
	}
	defer rows.Close()

	procedures := []flowchart.Procedure{}
	for rows.Next() {
		var p flowchart.Procedure
		var procUUID string
		if err := rows.Scan(&p.ID, &procUUID, &p.Title, &p.Author, &p.Version, &p.Created, &p.LastModified); err != nil {
			return nil, fmt.Errorf("flowchart: scan procedure: %w", err)
		}
		if p.UUID, err = uuid.Parse(procUUID); err != nil {
			return nil, fmt.Errorf("flowchart: parse uuid: %w", err)
		}
		procedures = append(procedures, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("flowchart: rows procedures: %w", err)
	}

	return procedures, nil
}

// UpdateProcedure updates the title and author of an existing procedure.
// Returns ErrProcedureNotFound if the procedure doesn't exist.
func (s *PGStore) UpdateProcedure(ctx context.Context, p *flowchart.Procedure) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE procedures SET title = $1, author = $2, last_modified = NOW() WHERE id = $3`,
		p.Title, p.Author, p.ID,
	)
	if err != nil {
		return fmt.Errorf("flowchart: update procedure: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return flowchart.ErrProcedureNotFound
	}
	return nil
}

// DeleteProcedure removes a procedure; pages, elements and show-ifs are cascade-deleted by the DB.
// No error if the procedure doesn't exist.
func (s *PGStore) DeleteProcedure(ctx context.Context, id int64) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM procedures WHERE id = $1`, id); err != nil {
		return fmt.Errorf("flowchart: delete procedure: %w", err)
	}
	return nil
}

// CopyProcedure stores a new version of a procedure under the same UUID.
// Returns ErrProcedureNotFound if the source doesn't exist.
func (s *PGStore) CopyProcedure(ctx context.Context, id int64) (*flowchart.Procedure, error) {
	src, err := s.GetProcedure(ctx, id)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, flowchart.ErrProcedureNotFound
	}

	var latest int
	if err := s.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM procedures WHERE uuid = $1`, src.UUID.String(),
	).Scan(&latest); err != nil {
		return nil, fmt.Errorf("flowchart: latest version: %w", err)
	}

	cp, err := src.NextVersion(latest + 1)
	if err != nil {
		return nil, err
	}
	return s.CreateProcedure(ctx, cp)
}
