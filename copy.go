package flowchart

import "strconv"

// NextVersion returns an unsaved copy of p to be stored as the given version
// of the same UUID. Elements carry their old id as Ref, and criteria pointing
// inside the procedure are rewritten to those refs so the copy references its
// own elements once stored. Criteria pointing outside the procedure are kept.
func (p *Procedure) NextVersion(version int) (*Procedure, error) {
	cp := &Procedure{
		UUID:    p.UUID,
		Title:   p.Title,
		Author:  p.Author,
		Version: version,
		Pages:   make([]Page, 0, len(p.Pages)),
	}

	known := make(map[int64]bool)
	for _, pg := range p.Pages {
		for _, el := range pg.Elements {
			if el.ID > 0 {
				known[el.ID] = true
			}
		}
	}

	for _, pg := range p.Pages {
		npg := Page{
			DisplayIndex: pg.DisplayIndex,
			Elements:     make([]Element, 0, len(pg.Elements)),
			ShowIfs:      make([]ShowIf, 0, len(pg.ShowIfs)),
		}
		for _, el := range pg.Elements {
			el.Ref = ""
			if el.ID > 0 {
				el.Ref = strconv.FormatInt(el.ID, 10)
			}
			el.ID = 0
			npg.Elements = append(npg.Elements, el)
		}
		for _, sh := range pg.ShowIfs {
			cond, err := CloneConditions(sh.Conditions)
			if err != nil {
				return nil, err
			}
			_ = walkConditions(cond, func(n *ConditionalNode) {
				if known[n.CriteriaElement] {
					n.CriteriaRef = strconv.FormatInt(n.CriteriaElement, 10)
					n.CriteriaElement = 0
				}
			})
			npg.ShowIfs = append(npg.ShowIfs, ShowIf{Conditions: cond})
		}
		cp.Pages = append(cp.Pages, npg)
	}

	return cp, nil
}
