package frontmatter

import (
	"errors"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
)

func TestParse_BlockAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\nkeywords:\n  - go\n  - seo\n---\n# Hello\nBody text.\n")
	block, body, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := block.Get("title"); got.AsScalar() != "Hello" {
		t.Errorf("title = %q, want %q", got.AsScalar(), "Hello")
	}
	kw, _ := block.Get("keywords")
	if s := kw.AsSequence(); len(s) != 2 || s[0] != "go" || s[1] != "seo" {
		t.Errorf("keywords = %v, want [go seo]", s)
	}
	if body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := []byte("# Just a heading\nSome text.\n")
	block, body, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if block != nil {
		t.Errorf("expected nil block, got %v", block.Keys())
	}
	if body != string(input) {
		t.Errorf("body = %q, want original text", body)
	}
}

func TestParse_UnclosedDelimiter(t *testing.T) {
	input := []byte("---\ntitle: Broken\nno closing line\n")
	block, body, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// An opening delimiter without a closing one is not front matter.
	if block != nil {
		t.Errorf("expected nil block, got %v", block.Keys())
	}
	if body != string(input) {
		t.Errorf("body = %q, want original text", body)
	}
}

func TestParse_MalformedYAML(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	_, _, err := Parse(input)
	if !errors.Is(err, apperr.ErrMalformedFrontmatter) {
		t.Fatalf("err = %v, want ErrMalformedFrontmatter", err)
	}
}

func TestParse_NonMappingRoot(t *testing.T) {
	input := []byte("---\n- just\n- a\n- list\n---\nBody\n")
	_, _, err := Parse(input)
	if !errors.Is(err, apperr.ErrMalformedFrontmatter) {
		t.Fatalf("err = %v, want ErrMalformedFrontmatter", err)
	}
}

func TestParse_EmptyBlock(t *testing.T) {
	block, body, err := Parse([]byte("---\n---\nBody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if block == nil || block.Len() != 0 {
		t.Errorf("expected empty block, got %v", block)
	}
	if body != "Body\n" {
		t.Errorf("body = %q", body)
	}
}

func TestParse_NestedMapping(t *testing.T) {
	input := []byte("---\nstructuredData:\n  type: Article\n  headline: Hi\n---\n")
	block, _, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sd, ok := block.Get("structuredData")
	if !ok || sd.Kind() != KindMapping {
		t.Fatalf("structuredData = %v, want mapping", sd.Kind())
	}
	if typ, _ := sd.AsMapping().Get("type"); typ.AsScalar() != "Article" {
		t.Errorf("type = %q, want Article", typ.AsScalar())
	}
	if keys := sd.AsMapping().Keys(); len(keys) != 2 || keys[0] != "type" || keys[1] != "headline" {
		t.Errorf("nested keys = %v, want [type headline]", keys)
	}
}

func TestParse_BodyNotTrimmed(t *testing.T) {
	input := []byte("---\ntitle: x\n---\n\n\n  indented start\n")
	_, body, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "\n\n  indented start\n" {
		t.Errorf("body = %q, leading bytes must survive", body)
	}
}

func TestParse_CRLFDelimiters(t *testing.T) {
	input := []byte("---\r\ntitle: Windows\r\n---\r\nBody\r\n")
	block, body, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := block.Get("title"); got.AsScalar() != "Windows" {
		t.Errorf("title = %q", got.AsScalar())
	}
	if body != "Body\r\n" {
		t.Errorf("body = %q", body)
	}
}

func TestParse_KeyOrderPreserved(t *testing.T) {
	input := []byte("---\nzeta: 1\nalpha: 2\nmiddle: 3\n---\n")
	block, _, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	keys := block.Keys()
	if len(keys) != 3 || keys[0] != "zeta" || keys[1] != "alpha" || keys[2] != "middle" {
		t.Errorf("keys = %v, want document order", keys)
	}
}
