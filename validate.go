package flowchart

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Check validates field rules (lengths, element and node types) of a procedure
// being stored. Condition trees are checked for cycles first.
func (p *Procedure) Check() error {
	for i := range p.Pages {
		if err := p.Pages[i].checkConditions(); err != nil {
			return err
		}
	}
	return validate.Struct(p)
}

// Check validates a page appended on its own: condition trees first, then
// field rules of its elements and show-ifs.
func (pg *Page) Check() error {
	if err := pg.checkConditions(); err != nil {
		return err
	}
	return validate.Struct(pg)
}

// Check validates field rules of a single element.
func (el *Element) Check() error {
	return validate.Struct(el)
}

// Check validates a show-if and its condition tree.
func (s *ShowIf) Check() error {
	if err := walkConditions(s.Conditions, func(*ConditionalNode) {}); err != nil {
		return err
	}
	return validate.Struct(s)
}

func (c *Concept) Check() error {
	return validate.Struct(c)
}

func (pg *Page) checkConditions() error {
	for _, s := range pg.ShowIfs {
		if err := walkConditions(s.Conditions, func(*ConditionalNode) {}); err != nil {
			return err
		}
	}
	return nil
}

// Validate reports whether the procedure is complete enough to publish:
// at least one page, and no page without elements.
func (p *Procedure) Validate() error {
	if len(p.Pages) == 0 {
		return ErrNoPages
	}
	for i, page := range p.Pages {
		if len(page.Elements) == 0 {
			return fmt.Errorf("page %d: %w", i, ErrEmptyPage)
		}
	}
	return nil
}
