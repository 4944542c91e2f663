package flowchart

import (
	"time"

	"github.com/google/uuid"
)

// Procedure is a decision-tree form made of ordered pages.
// All versions of one procedure share the same UUID.
type Procedure struct {
	ID           int64     `json:"id,omitempty"`
	UUID         uuid.UUID `json:"uuid"`
	Title        string    `json:"title" validate:"max=255"`
	Author       string    `json:"author" validate:"max=255"`
	Version      int       `json:"version"`
	Created      time.Time `json:"created"`
	LastModified time.Time `json:"last_modified"`
	Pages        []Page    `json:"pages" validate:"dive"`
}

// Page is one screen of a procedure. Slice position, not DisplayIndex, is the
// order used when building graphs.
type Page struct {
	ID           int64     `json:"id,omitempty"`
	DisplayIndex int       `json:"display_index" validate:"gte=0"`
	Elements     []Element `json:"elements" validate:"dive"`
	ShowIfs      []ShowIf  `json:"show_if" validate:"dive"`
}

// Element is a single question on a page. ConceptID links the answer to a
// Concept; zero means none.
// Ref is a temporary key used only during CreateProcedure for criteria wiring; it is never persisted.
type Element struct {
	ID           int64  `json:"id,omitempty"`
	Ref          string `json:"ref,omitempty"`
	DisplayIndex int    `json:"display_index" validate:"gte=0"`
	ElementType  string `json:"element_type" validate:"omitempty,oneof=DATE ENTRY SELECT MULTI_SELECT RADIO PICTURE PLUGIN ENTRY_PLUGIN PLUGIN_ENTRY"`
	Question     string `json:"question"`
	Answer       string `json:"answer,omitempty"`
	Choices      string `json:"choices,omitempty"`
	Required     bool   `json:"required"`
	Image        string `json:"image,omitempty"`
	Audio        string `json:"audio,omitempty"`
	Action       string `json:"action,omitempty"`
	MimeType     string `json:"mime_type,omitempty" validate:"max=128"`
	ConceptID    int64  `json:"concept_id,omitempty" validate:"gte=0"`
}

// ShowIf is a visibility rule of a page, rooted at a condition tree.
type ShowIf struct {
	ID         int64            `json:"id,omitempty"`
	Conditions *ConditionalNode `json:"conditions"`
}

// Node types of a ConditionalNode.
const (
	NodeAnd     = "AND"
	NodeOr      = "OR"
	NodeNot     = "NOT"
	NodeEquals  = "EQUALS"
	NodeGreater = "GREATER"
	NodeLess    = "LESS"
)

// ConditionalNode is a node of a show-if expression tree. Logical nodes
// (AND, OR, NOT) combine children; criteria nodes (EQUALS, GREATER, LESS)
// compare the value of CriteriaElement. A CriteriaElement <= 0 references
// nothing.
// CriteriaRef is a temporary key pointing at an Element.Ref, resolved during CreateProcedure.
type ConditionalNode struct {
	NodeType        string             `json:"node_type" validate:"omitempty,oneof=AND OR NOT EQUALS GREATER LESS"`
	CriteriaElement int64              `json:"criteria_element,omitempty"`
	CriteriaRef     string             `json:"criteria_ref,omitempty"`
	Value           string             `json:"value,omitempty"`
	Children        []*ConditionalNode `json:"children,omitempty" validate:"dive"`
}

// Concept types the data an element collects.
type Concept struct {
	ID           int64     `json:"id,omitempty"`
	UUID         uuid.UUID `json:"uuid"`
	Name         string    `json:"name" validate:"required,max=255"`
	DisplayName  string    `json:"display_name" validate:"required,max=255"`
	Description  string    `json:"description,omitempty"`
	DataType     string    `json:"data_type,omitempty" validate:"omitempty,oneof=string boolean number complex"`
	MimeType     string    `json:"mime_type,omitempty" validate:"max=128"`
	Constraint   string    `json:"constraint,omitempty"`
	Created      time.Time `json:"created"`
	LastModified time.Time `json:"last_modified"`
}
