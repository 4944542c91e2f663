package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/flowchart"
	"github.com/meikuraledutech/flowchart/postgres"
)

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	// Wire up the postgres implementation behind the Store interface.
	var store flowchart.Store = postgres.New(pool)

	// 1. Create tables
	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("schema created")

	// ── Bulk insert using refs ────────────────────────────────────────
	intake := &flowchart.Procedure{
		Title:  "Intake",
		Author: "Clinic staff",
		Pages: []flowchart.Page{
			{
				DisplayIndex: 0,
				Elements: []flowchart.Element{
					{Ref: "name", ElementType: "ENTRY", Question: "Name"},
					{Ref: "age", ElementType: "ENTRY", Question: "Age", DisplayIndex: 1},
				},
			},
			{
				DisplayIndex: 1,
				Elements: []flowchart.Element{
					{Ref: "fever", ElementType: "RADIO", Question: "Fever in the last 48 hours?", Choices: "yes,no"},
				},
				ShowIfs: []flowchart.ShowIf{{
					Conditions: &flowchart.ConditionalNode{
						NodeType: flowchart.NodeAnd,
						Children: []*flowchart.ConditionalNode{
							{NodeType: flowchart.NodeGreater, CriteriaRef: "age", Value: "12"},
							{NodeType: flowchart.NodeNot, Children: []*flowchart.ConditionalNode{
								{NodeType: flowchart.NodeEquals, CriteriaRef: "name", Value: ""},
							}},
						},
					},
				}},
			},
		},
	}

	created, err := store.CreateProcedure(ctx, intake)
	if err != nil {
		log.Fatalf("create procedure: %v", err)
	}
	fmt.Printf("procedure created: %d\n", created.ID)

	// ── Granular: append a page ───────────────────────────────────────
	pageID, err := store.AddPage(ctx, created.ID, &flowchart.Page{
		Elements: []flowchart.Element{{ElementType: "PICTURE", Question: "Photo of the rash"}},
		ShowIfs: []flowchart.ShowIf{{Conditions: &flowchart.ConditionalNode{
			NodeType:        flowchart.NodeEquals,
			CriteriaElement: created.Pages[1].Elements[0].ID,
			Value:           "yes",
		}}},
	})
	if err != nil {
		log.Fatalf("add page: %v", err)
	}
	fmt.Printf("added page: %d\n", pageID)

	// ── Concepts and reordering ───────────────────────────────────────
	temp, err := store.CreateConcept(ctx, &flowchart.Concept{
		Name: "temperature", DisplayName: "Body temperature", DataType: "number",
	})
	if err != nil {
		log.Fatalf("create concept: %v", err)
	}
	if _, err := store.AddElement(ctx, pageID, &flowchart.Element{
		DisplayIndex: 1, ElementType: "ENTRY", Question: "Temperature", ConceptID: temp.ID,
	}); err != nil {
		log.Fatalf("add element: %v", err)
	}
	if err := store.UpdatePage(ctx, &flowchart.Page{ID: pageID, DisplayIndex: 1}); err != nil {
		log.Fatalf("move page: %v", err)
	}
	fmt.Printf("concept %d linked; page %d moved\n", temp.ID, pageID)

	// ── Retrieve and graph ────────────────────────────────────────────
	p, err := store.GetProcedure(ctx, created.ID)
	if err != nil {
		log.Fatalf("get procedure: %v", err)
	}
	g, err := flowchart.Build(p)
	if err != nil {
		log.Fatalf("build graph: %v", err)
	}
	fmt.Println("\ngraph:")
	printJSON(g)
	fmt.Println("\nmermaid:")
	fmt.Print(g.Mermaid())

	// ── New version ───────────────────────────────────────────────────
	v2, err := store.CopyProcedure(ctx, created.ID)
	if err != nil {
		log.Fatalf("copy: %v", err)
	}
	fmt.Printf("\ncopied to version %d (id %d)\n", v2.Version, v2.ID)

	// ── Cleanup ───────────────────────────────────────────────────────
	for _, id := range []int64{created.ID, v2.ID} {
		if err := store.DeleteProcedure(ctx, id); err != nil {
			log.Fatalf("delete: %v", err)
		}
	}
	if err := store.DeleteConcept(ctx, temp.ID); err != nil {
		log.Fatalf("delete concept: %v", err)
	}
	fmt.Println("procedures deleted")
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
