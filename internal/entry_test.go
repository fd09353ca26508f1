package internal

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/testutil"
)

func testConfig(t *testing.T, docsRoot string) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Site.URL = "https://docs.example.com"
	cfg.Site.Author = "Docs Team"
	cfg.Site.Locales = []string{"zh-Hans"}
	cfg.Docs.Path = docsRoot
	cfg.Docs.StaticPath = filepath.Join(t.TempDir(), "static")
	cfg.Docs.OutputPath = filepath.Join(t.TempDir(), "output")
	cfg.Cache.Path = filepath.Join(t.TempDir(), "cache.db")
	cfg.Suggest.Enabled = false
	return cfg
}

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Fatal("missing config should fail")
	}
}

func TestRun_UnknownMode(t *testing.T) {
	docsRoot, _ := testutil.TestDocs(t)
	cfg := testConfig(t, docsRoot)
	err := Run(context.Background(), WithConfig(cfg), WithMode("explode"))
	if err == nil || !strings.Contains(err.Error(), "unknown mode") {
		t.Fatalf("err = %v", err)
	}
}

func TestRun_RobotsMode(t *testing.T) {
	docsRoot, _ := testutil.TestDocs(t)
	cfg := testConfig(t, docsRoot)
	cfg.Robots.DisallowPaths = []string{"/internal/"}

	if err := Run(context.Background(), WithConfig(cfg), WithMode("robots")); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(cfg.Docs.StaticPath, "robots.txt"))
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, "Disallow: /internal/") {
		t.Errorf("robots.txt content:\n%s", text)
	}
	if !strings.Contains(text, "Sitemap: https://docs.example.com/sitemap_index.xml") {
		t.Errorf("robots.txt missing sitemap pointer:\n%s", text)
	}
}

func TestRun_SitemapMode(t *testing.T) {
	docsRoot, _ := testutil.TestDocs(t)
	cfg := testConfig(t, docsRoot)

	if err := Run(context.Background(), WithConfig(cfg), WithMode("sitemap")); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(cfg.Docs.StaticPath, "sitemap_index.xml"))
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, "https://docs.example.com/sitemap.xml") {
		t.Errorf("sitemap missing default entry:\n%s", text)
	}
	if !strings.Contains(text, "https://docs.example.com/zh-Hans/sitemap.xml") {
		t.Errorf("sitemap missing locale entry:\n%s", text)
	}
}

func TestRun_AnalyzeMode(t *testing.T) {
	docsRoot, _ := testutil.TestDocs(t)
	testutil.WriteDoc(t, docsRoot, "intro.md", "---\ntitle: Intro\n---\n\nShort body.\n")
	cfg := testConfig(t, docsRoot)

	if err := Run(context.Background(), WithConfig(cfg), WithMode("analyze")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Docs.OutputPath, "seo_report.json")); err != nil {
		t.Errorf("seo_report.json missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Docs.OutputPath, "seo_issues.csv")); err != nil {
		t.Errorf("seo_issues.csv missing: %v", err)
	}
}

func TestRun_FullRun(t *testing.T) {
	docsRoot, store := testutil.TestDocs(t)
	testutil.WriteDoc(t, docsRoot, "guide/intro.md",
		"---\ntitle: Intro\n---\n\nThe gateway routes requests to upstream services.\n")
	cfg := testConfig(t, docsRoot)

	if err := Run(context.Background(), WithConfig(cfg), WithMode("run")); err != nil {
		t.Fatal(err)
	}

	// Artifacts from every stage.
	for _, f := range []string{"robots.txt", "sitemap_index.xml"} {
		if _, err := os.Stat(filepath.Join(cfg.Docs.StaticPath, f)); err != nil {
			t.Errorf("%s missing: %v", f, err)
		}
	}
	for _, f := range []string{"enhance_report.json", "seo_report.json", "seo_issues.csv"} {
		if _, err := os.Stat(filepath.Join(cfg.Docs.OutputPath, f)); err != nil {
			t.Errorf("%s missing: %v", f, err)
		}
	}

	// The document was enhanced in place.
	data, err := store.Read("guide/intro.md")
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, "description:") || !strings.Contains(text, "author: Docs Team") {
		t.Errorf("document not enhanced:\n%s", text)
	}
}

func TestRun_EnhancePreviewDoesNotWrite(t *testing.T) {
	docsRoot, store := testutil.TestDocs(t)
	original := "---\ntitle: Intro\n---\n\nBody about routing.\n"
	testutil.WriteDoc(t, docsRoot, "intro.md", original)
	cfg := testConfig(t, docsRoot)

	err := Run(context.Background(), WithConfig(cfg), WithMode("enhance"), WithPreview(true))
	if err != nil {
		t.Fatal(err)
	}
	data, err := store.Read("intro.md")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != original {
		t.Error("preview run must not modify documents")
	}
	if _, err := os.Stat(filepath.Join(cfg.Docs.OutputPath, "enhance_report.json")); err != nil {
		t.Errorf("enhance_report.json missing: %v", err)
	}
}
