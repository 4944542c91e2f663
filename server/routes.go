package main

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/flowchart"
)

type handler struct {
	store  flowchart.Store
	logger *slog.Logger
}

// newApp wires every route of the service onto a fiber app.
func newApp(store flowchart.Store, logger *slog.Logger) *fiber.App {
	h := &handler{store: store, logger: logger}

	app := fiber.New(fiber.Config{
		ErrorHandler:  h.errorHandler,
		StrictRouting: true,
	})
	app.Use(h.logRequest)

	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", h.createSchema)
	app.Delete("/schema", h.dropSchema)

	// ── Procedures (bulk) ─────────────────────────────────────────────
	app.Post("/procedures", h.createProcedure)
	app.Get("/procedures", h.listProcedures)
	app.Get("/procedures/:id", h.getProcedure)
	app.Put("/procedures/:id", h.updateProcedure)
	app.Delete("/procedures/:id", h.deleteProcedure)
	app.Post("/procedures/:id/copy", h.copyProcedure)

	// ── Visualization ─────────────────────────────────────────────────
	app.Get("/procedures/:id/graph", h.graph)
	app.Get("/procedures/:id/flowchart", h.flowchart)
	app.Get("/procedures/:id/mermaid", h.mermaid)
	app.Get("/procedures/:id/validate", h.validate)

	// ── Pages ─────────────────────────────────────────────────────────
	app.Post("/procedures/:id/pages", h.addPage)
	app.Put("/pages/:id", h.updatePage)
	app.Delete("/pages/:id", h.deletePage)

	// ── Elements ──────────────────────────────────────────────────────
	app.Post("/pages/:id/elements", h.addElement)
	app.Put("/elements/:id", h.updateElement)
	app.Delete("/elements/:id", h.deleteElement)

	// ── Show-ifs ──────────────────────────────────────────────────────
	app.Post("/pages/:id/show-ifs", h.addShowIf)
	app.Put("/show-ifs/:id", h.updateShowIf)
	app.Delete("/show-ifs/:id", h.deleteShowIf)

	// ── Concepts ──────────────────────────────────────────────────────
	app.Post("/concepts", h.createConcept)
	app.Get("/concepts", h.listConcepts)
	app.Get("/concepts/:id", h.getConcept)
	app.Put("/concepts/:id", h.updateConcept)
	app.Delete("/concepts/:id", h.deleteConcept)

	return app
}

func (h *handler) logRequest(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	h.logger.Debug("request",
		"method", c.Method(),
		"path", c.Path(),
		"duration", time.Since(start),
	)
	return err
}

func paramID(c fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func bindJSON(c fiber.Ctx, v any) error {
	if err := c.Bind().JSON(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	return nil
}

func (h *handler) createSchema(c fiber.Ctx) error {
	if err := h.store.CreateSchema(c.Context()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "schema created"})
}

func (h *handler) dropSchema(c fiber.Ctx) error {
	if err := h.store.DropSchema(c.Context()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "schema dropped"})
}

func (h *handler) createProcedure(c fiber.Ctx) error {
	var p flowchart.Procedure
	if err := bindJSON(c, &p); err != nil {
		return err
	}
	if err := p.Check(); err != nil {
		return err
	}
	result, err := h.store.CreateProcedure(c.Context(), &p)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *handler) listProcedures(c fiber.Ctx) error {
	list, err := h.store.ListProcedures(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// loadProcedure fetches the procedure named by the :id param.
func (h *handler) loadProcedure(c fiber.Ctx) (*flowchart.Procedure, error) {
	id, err := paramID(c)
	if err != nil {
		return nil, err
	}
	p, err := h.store.GetProcedure(c.Context(), id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, flowchart.ErrProcedureNotFound
	}
	return p, nil
}

func (h *handler) getProcedure(c fiber.Ctx) error {
	p, err := h.loadProcedure(c)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *handler) updateProcedure(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var p flowchart.Procedure
	if err := bindJSON(c, &p); err != nil {
		return err
	}
	p.ID = id
	p.Pages = nil
	if err := p.Check(); err != nil {
		return err
	}
	if err := h.store.UpdateProcedure(c.Context(), &p); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) deleteProcedure(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.store.DeleteProcedure(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) copyProcedure(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	p, err := h.store.CopyProcedure(c.Context(), id)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// buildGraph loads the procedure and builds its graph on every request.
func (h *handler) buildGraph(c fiber.Ctx) (*flowchart.Graph, error) {
	p, err := h.loadProcedure(c)
	if err != nil {
		return nil, err
	}
	g, err := flowchart.Build(p)
	if err != nil {
		return nil, err
	}
	h.logger.Debug("graph built",
		"procedure_id", p.ID,
		"nodes", len(g.Nodes),
		"conditional_edges", len(g.ConditionalEdges),
	)
	return g, nil
}

func (h *handler) graph(c fiber.Ctx) error {
	g, err := h.buildGraph(c)
	if err != nil {
		return err
	}
	return c.JSON(g)
}

func (h *handler) flowchart(c fiber.Ctx) error {
	g, err := h.buildGraph(c)
	if err != nil {
		return err
	}
	return c.JSON(g.Flowchart())
}

func (h *handler) mermaid(c fiber.Ctx) error {
	g, err := h.buildGraph(c)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(g.Mermaid())
}

func (h *handler) validate(c fiber.Ctx) error {
	p, err := h.loadProcedure(c)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return c.JSON(fiber.Map{"valid": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"valid": true})
}

func (h *handler) addPage(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var page flowchart.Page
	if err := bindJSON(c, &page); err != nil {
		return err
	}
	if err := page.Check(); err != nil {
		return err
	}
	pageID, err := h.store.AddPage(c.Context(), id, &page)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": pageID, "display_index": page.DisplayIndex})
}

// updatePage only moves the page; its elements and show-ifs have their own routes.
func (h *handler) updatePage(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var page flowchart.Page
	if err := bindJSON(c, &page); err != nil {
		return err
	}
	page.ID = id
	page.Elements = nil
	page.ShowIfs = nil
	if err := page.Check(); err != nil {
		return err
	}
	if err := h.store.UpdatePage(c.Context(), &page); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) deletePage(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.store.DeletePage(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) addElement(c fiber.Ctx) error {
	pageID, err := paramID(c)
	if err != nil {
		return err
	}
	var el flowchart.Element
	if err := bindJSON(c, &el); err != nil {
		return err
	}
	if err := el.Check(); err != nil {
		return err
	}
	id, err := h.store.AddElement(c.Context(), pageID, &el)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *handler) updateElement(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var el flowchart.Element
	if err := bindJSON(c, &el); err != nil {
		return err
	}
	el.ID = id
	if err := el.Check(); err != nil {
		return err
	}
	if err := h.store.UpdateElement(c.Context(), &el); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) deleteElement(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.store.DeleteElement(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) addShowIf(c fiber.Ctx) error {
	pageID, err := paramID(c)
	if err != nil {
		return err
	}
	var sh flowchart.ShowIf
	if err := bindJSON(c, &sh); err != nil {
		return err
	}
	if err := sh.Check(); err != nil {
		return err
	}
	id, err := h.store.AddShowIf(c.Context(), pageID, &sh)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *handler) updateShowIf(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var sh flowchart.ShowIf
	if err := bindJSON(c, &sh); err != nil {
		return err
	}
	sh.ID = id
	if err := sh.Check(); err != nil {
		return err
	}
	if err := h.store.UpdateShowIf(c.Context(), &sh); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) deleteShowIf(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.store.DeleteShowIf(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) createConcept(c fiber.Ctx) error {
	var concept flowchart.Concept
	if err := bindJSON(c, &concept); err != nil {
		return err
	}
	if err := concept.Check(); err != nil {
		return err
	}
	result, err := h.store.CreateConcept(c.Context(), &concept)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *handler) listConcepts(c fiber.Ctx) error {
	list, err := h.store.ListConcepts(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *handler) getConcept(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	concept, err := h.store.GetConcept(c.Context(), id)
	if err != nil {
		return err
	}
	if concept == nil {
		return flowchart.ErrConceptNotFound
	}
	return c.JSON(concept)
}

func (h *handler) updateConcept(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var concept flowchart.Concept
	if err := bindJSON(c, &concept); err != nil {
		return err
	}
	concept.ID = id
	if err := concept.Check(); err != nil {
		return err
	}
	if err := h.store.UpdateConcept(c.Context(), &concept); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) deleteConcept(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.store.DeleteConcept(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
