package sitegen

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestSitemapIndex(t *testing.T) {
	lastMod := time.Date(2026, 8, 26, 15, 30, 0, 0, time.UTC)
	out, err := SitemapIndex("https://docs.example.com", []string{"zh-Hans", "ja"}, lastMod)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		"<loc>https://docs.example.com/sitemap.xml</loc>",
		"<loc>https://docs.example.com/zh-Hans/sitemap.xml</loc>",
		"<loc>https://docs.example.com/ja/sitemap.xml</loc>",
		"<lastmod>2026-08-26</lastmod>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "<sitemap>"); n != 3 {
		t.Errorf("sitemap entries = %d, want 3", n)
	}
}

func TestSitemapIndex_TrailingSlash(t *testing.T) {
	out, err := SitemapIndex("https://docs.example.com/", nil, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "com//sitemap") {
		t.Errorf("double slash in output:\n%s", out)
	}
}

func TestRobots(t *testing.T) {
	out := Robots("https://docs.example.com", RobotsOptions{
		AllowAll:      true,
		DisallowPaths: []string{"/private/", "/temp/"},
		SitemapPath:   "sitemap-index.xml",
	})

	want := "User-agent: *\nAllow: /\nDisallow: /private/\nDisallow: /temp/\n\nSitemap: https://docs.example.com/sitemap-index.xml\n"
	if out != want {
		t.Errorf("robots.txt =\n%q\nwant\n%q", out, want)
	}
}

func TestRobots_Defaults(t *testing.T) {
	out := Robots("https://x.example", RobotsOptions{})
	if !strings.Contains(out, "Sitemap: https://x.example/sitemap.xml") {
		t.Errorf("default sitemap path missing:\n%s", out)
	}
	if strings.Contains(out, "Allow: /") {
		t.Errorf("allow line must be opt-in:\n%s", out)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir() + "/static"
	path, err := WriteFile(dir, "robots.txt", "content\n")
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "content\n" {
		t.Errorf("content = %q", data)
	}
}
