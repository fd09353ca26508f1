package suggest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/frontmatter"
)

func fixedNow() time.Time {
	return time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
}

func TestGenerateDescription_FirstParagraph(t *testing.T) {
	body := "# Heading\n\nThis is the **first** paragraph with a [link](https://x).\n\nSecond paragraph.\n"
	got := GenerateDescription(body, 150)
	want := "This is the first paragraph with a link."
	if got != want {
		t.Errorf("description = %q, want %q", got, want)
	}
}

func TestGenerateDescription_Truncates(t *testing.T) {
	body := strings.Repeat("word ", 100)
	got := GenerateDescription(body, 20)
	if len([]rune(got)) != 23 || !strings.HasSuffix(got, "...") {
		t.Errorf("description = %q, want 20 runes plus ellipsis", got)
	}
}

func TestGenerateDescription_EmptyBody(t *testing.T) {
	if got := GenerateDescription("\n\n\n", 150); got != "" {
		t.Errorf("description = %q, want empty", got)
	}
}

func TestExtractKeywords_FrequencyOrder(t *testing.T) {
	body := "kubernetes kubernetes kubernetes deployment deployment cluster"
	got := ExtractKeywords(body, 2)
	if len(got) != 2 || got[0] != "kubernetes" || got[1] != "deployment" {
		t.Errorf("keywords = %v, want [kubernetes deployment]", got)
	}
}

func TestExtractKeywords_HanWindows(t *testing.T) {
	// 十神 appears three times, once mid-sentence; 命理 twice. Overlapping
	// windows must surface both regardless of where they sit in a run.
	body := "十神是命理学的概念。命理中的十神很重要。十神在八字中使用。"
	got := ExtractKeywords(body, 3)
	if len(got) < 2 {
		t.Fatalf("keywords = %v, expected Han keywords", got)
	}
	if got[0] != "十神" {
		t.Errorf("top keyword = %q, want 十神", got[0])
	}
	if got[1] != "命理" {
		t.Errorf("second keyword = %q, want 命理", got[1])
	}
}

func TestExtractKeywords_SkipsSingleHanCharacters(t *testing.T) {
	for _, k := range ExtractKeywords("好。好。好。", 5) {
		if len([]rune(k)) < 2 {
			t.Errorf("single-character keyword %q leaked", k)
		}
	}
}

func TestExtractKeywords_SkipsStopwords(t *testing.T) {
	got := ExtractKeywords("this that with docs docs", 5)
	for _, k := range got {
		if _, stop := latinStopwords[k]; stop {
			t.Errorf("stopword %q leaked into keywords", k)
		}
	}
}

func TestStatic_Suggest(t *testing.T) {
	s := NewStatic(StaticOptions{
		Author:            "Docs Team",
		DirectoryKeywords: map[string][]string{"terms": {"glossary", "reference"}},
		BaseKeywords:      []string{"docs"},
		GlossaryDirs:      []string{"terms"},
		IndexSuffix:       "overview.md",
		Now:               fixedNow,
	})

	cand, err := s.Suggest(context.Background(), "terms/gateway.md", "# Gateway\n\nA gateway routes traffic.\n", nil)
	if err != nil {
		t.Fatalf("static suggest must not fail: %v", err)
	}
	if cand.Author != "Docs Team" {
		t.Errorf("author = %q", cand.Author)
	}
	if cand.Description == "" || !strings.Contains(cand.Description, "gateway routes") {
		t.Errorf("description = %q", cand.Description)
	}
	if len(cand.Keywords) < 2 || cand.Keywords[0] != "glossary" {
		t.Errorf("keywords = %v, want directory base keywords first", cand.Keywords)
	}
	if cand.StructuredData["type"] != "DefinedTerm" {
		t.Errorf("type = %q, want DefinedTerm", cand.StructuredData["type"])
	}
	if cand.DatePublished != "2026-08-26T12:00:00Z" || cand.DateModified != "2026-08-26T12:00:00Z" {
		t.Errorf("dates = %q / %q", cand.DatePublished, cand.DateModified)
	}
}

func TestStatic_RespectsExisting(t *testing.T) {
	s := NewStatic(StaticOptions{Now: fixedNow})
	existing := frontmatter.NewBlock()
	existing.Set("description", frontmatter.Scalar("curated"))
	existing.Set("datePublished", frontmatter.Scalar("2020-01-01T00:00:00Z"))
	existing.Set("dateModified", frontmatter.Scalar("2021-06-01T00:00:00Z"))

	cand, err := s.Suggest(context.Background(), "a.md", "Some body text here.", existing)
	if err != nil {
		t.Fatal(err)
	}
	if cand.Description != "" {
		t.Errorf("description = %q, must stay empty when one exists", cand.Description)
	}
	if cand.DatePublished != "" {
		t.Errorf("datePublished = %q, must stay empty when one exists", cand.DatePublished)
	}
	if cand.DateModified != "" {
		t.Errorf("dateModified = %q, must stay empty when one exists", cand.DateModified)
	}
}

func TestStatic_IndexFileIsArticle(t *testing.T) {
	s := NewStatic(StaticOptions{GlossaryDirs: []string{"terms"}, IndexSuffix: "overview.md", Now: fixedNow})
	cand, _ := s.Suggest(context.Background(), "terms/overview.md", "x", nil)
	if cand.StructuredData["type"] != "Article" {
		t.Errorf("type = %q, want Article for index files", cand.StructuredData["type"])
	}
}

func TestCandidate_Block(t *testing.T) {
	cand := Candidate{
		Description:    "d",
		Keywords:       []string{"a", "b"},
		StructuredData: map[string]string{"type": "Article", "headline": "H"},
	}
	b := cand.Block()
	if b.Has("author") || b.Has("datePublished") || b.Has("dateModified") {
		t.Error("empty fields must not become keys")
	}
	sd, _ := b.Get("structuredData")
	keys := sd.AsMapping().Keys()
	if len(keys) != 2 || keys[0] != "type" {
		t.Errorf("structuredData keys = %v, want type first", keys)
	}
}

func TestCandidate_IsZero(t *testing.T) {
	if !(Candidate{}).IsZero() {
		t.Error("empty candidate must be zero")
	}
	if (Candidate{Description: "x"}).IsZero() {
		t.Error("non-empty candidate must not be zero")
	}
}
