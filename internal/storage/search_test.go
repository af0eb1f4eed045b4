/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package storage

import (
	"context"
	"strings"
	"testing"

	"scholarai/internal/domain"
)

func searchFixture() domain.PaperState {
	return domain.PaperState{
		Title:    "Transformer Survey",
		Abstract: "<p>A survey of attention mechanisms.</p>",
		Sections: []domain.Section{
			{ID: "s1", Title: "Introduction", Content: "<p>Attention is all you need, famously.</p>"},
			{ID: "s2", Title: "Background", Content: "<p>Recurrent networks came first.</p>"},
		},
		Citations: []domain.Citation{
			{ID: "1", Author: "Vaswani, A.", Title: "Attention Is All You Need", Journal: "NeurIPS", Year: "2017", Type: domain.StyleIEEE},
		},
	}
}

func TestSearchFindsSectionTextWithSnippet(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	if err := UpdateIndex(ctx, root, searchFixture()); err != nil {
		t.Fatalf("UpdateIndex error: %v", err)
	}
	res, err := Search(ctx, root, SearchQuery{Text: "recurrent"})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(res) != 1 {
		t.Fatalf("results = %d, want 1", len(res))
	}
	if res[0].SectionID != "s2" {
		t.Fatalf("section id = %q, want s2", res[0].SectionID)
	}
	if !strings.Contains(res[0].Snippet, "[Recurrent]") {
		t.Fatalf("snippet missing highlight: %q", res[0].Snippet)
	}
}

func TestSearchKindFilter(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	if err := UpdateIndex(ctx, root, searchFixture()); err != nil {
		t.Fatalf("UpdateIndex error: %v", err)
	}
	// "attention" appears in the abstract, a section body and a citation
	all, err := Search(ctx, root, SearchQuery{Text: "attention"})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("unfiltered results = %d, want 3", len(all))
	}
	only, err := Search(ctx, root, SearchQuery{Text: "attention", Kinds: []string{"citation"}})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(only) != 1 || only[0].Kind != "citation" {
		t.Fatalf("kind filter results = %+v", only)
	}
}

func TestSearchWithoutTextScansWithFilters(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	if err := UpdateIndex(ctx, root, searchFixture()); err != nil {
		t.Fatalf("UpdateIndex error: %v", err)
	}
	res, err := Search(ctx, root, SearchQuery{SectionID: "s1"})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	// section title row plus section body row
	if len(res) != 2 {
		t.Fatalf("results = %d, want 2", len(res))
	}
	for _, r := range res {
		if r.SectionID != "s1" {
			t.Fatalf("unexpected section id %q", r.SectionID)
		}
		if r.Snippet != "" {
			t.Fatalf("non-FTS scan should not produce snippets: %q", r.Snippet)
		}
	}
}

func TestSearchPagination(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	if err := UpdateIndex(ctx, root, searchFixture()); err != nil {
		t.Fatalf("UpdateIndex error: %v", err)
	}
	page1, err := Search(ctx, root, SearchQuery{Limit: 2})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("page1 = %d rows, want 2", len(page1))
	}
	page2, err := Search(ctx, root, SearchQuery{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(page2) == 0 {
		t.Fatalf("page2 empty")
	}
	if page1[0].DocID == page2[0].DocID {
		t.Fatalf("pagination returned overlapping rows")
	}
}
