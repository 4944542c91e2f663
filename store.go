package flowchart

import (
	"context"
	"errors"
)

var (
	ErrMalformedConditionTree = errors.New("flowchart: condition tree contains a cycle")
	ErrProcedureNotFound      = errors.New("flowchart: procedure not found")
	ErrPageNotFound           = errors.New("flowchart: page not found")
	ErrElementNotFound        = errors.New("flowchart: element not found")
	ErrShowIfNotFound         = errors.New("flowchart: show-if not found")
	ErrConceptNotFound        = errors.New("flowchart: concept not found")
	ErrUnresolvedRef          = errors.New("flowchart: criteria_ref is only resolved when creating a procedure")
	ErrNoPages                = errors.New("flowchart: procedure has no pages")
	ErrEmptyPage              = errors.New("flowchart: page has no elements")
)

// Store defines the contract for persisting and retrieving procedures.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Procedures (bulk operations)
	CreateProcedure(ctx context.Context, p *Procedure) (*Procedure, error)
	GetProcedure(ctx context.Context, id int64) (*Procedure, error)
	ListProcedures(ctx context.Context) ([]Procedure, error)
	UpdateProcedure(ctx context.Context, p *Procedure) error
	DeleteProcedure(ctx context.Context, id int64) error
	CopyProcedure(ctx context.Context, id int64) (*Procedure, error)

	// Pages
	AddPage(ctx context.Context, procedureID int64, page *Page) (int64, error)
	UpdatePage(ctx context.Context, page *Page) error
	DeletePage(ctx context.Context, pageID int64) error

	// Elements
	AddElement(ctx context.Context, pageID int64, el *Element) (int64, error)
	UpdateElement(ctx context.Context, el *Element) error
	DeleteElement(ctx context.Context, elementID int64) error

	// Show-ifs
	AddShowIf(ctx context.Context, pageID int64, s *ShowIf) (int64, error)
	UpdateShowIf(ctx context.Context, s *ShowIf) error
	DeleteShowIf(ctx context.Context, showIfID int64) error

	// Concepts
	CreateConcept(ctx context.Context, c *Concept) (*Concept, error)
	GetConcept(ctx context.Context, id int64) (*Concept, error)
	ListConcepts(ctx context.Context) ([]Concept, error)
	UpdateConcept(ctx context.Context, c *Concept) error
	DeleteConcept(ctx context.Context, id int64) error
}
