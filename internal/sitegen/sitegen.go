// Package sitegen renders the auxiliary SEO artifacts: the sitemap index
// pointing at per-locale sitemaps, and robots.txt.
package sitegen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

const sitemapIndexTmpl = `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
{{- range .Entries }}
  <sitemap>
    <loc>{{ .Loc }}</loc>
    <lastmod>{{ .LastMod }}</lastmod>
  </sitemap>
{{- end }}
</sitemapindex>
`

var sitemapTemplate = template.Must(template.New("sitemapindex").Parse(sitemapIndexTmpl))

type sitemapEntry struct {
	Loc     string
	LastMod string
}

// SitemapIndex renders a sitemap index for the default sitemap plus one per
// locale. lastMod is truncated to a date, matching what crawlers expect.
func SitemapIndex(baseURL string, locales []string, lastMod time.Time) (string, error) {
	base := strings.TrimRight(baseURL, "/") + "/"
	date := lastMod.UTC().Format("2006-01-02")

	entries := []sitemapEntry{{Loc: base + "sitemap.xml", LastMod: date}}
	for _, locale := range locales {
		entries = append(entries, sitemapEntry{
			Loc:     base + locale + "/sitemap.xml",
			LastMod: date,
		})
	}

	var sb strings.Builder
	if err := sitemapTemplate.Execute(&sb, struct{ Entries []sitemapEntry }{entries}); err != nil {
		return "", fmt.Errorf("sitegen: render sitemap index: %w", err)
	}
	return sb.String(), nil
}

// RobotsOptions configures robots.txt rendering.
type RobotsOptions struct {
	AllowAll      bool
	DisallowPaths []string
	SitemapPath   string // relative to the site URL, e.g. "sitemap-index.xml"
}

// Robots renders robots.txt for the given site URL.
func Robots(siteURL string, opts RobotsOptions) string {
	var lines []string
	lines = append(lines, "User-agent: *")
	if opts.AllowAll {
		lines = append(lines, "Allow: /")
	}
	for _, p := range opts.DisallowPaths {
		lines = append(lines, "Disallow: "+p)
	}

	sitemap := opts.SitemapPath
	if sitemap == "" {
		sitemap = "sitemap.xml"
	}
	lines = append(lines, "", "Sitemap: "+strings.TrimRight(siteURL, "/")+"/"+sitemap)
	return strings.Join(lines, "\n") + "\n"
}

// WriteFile writes content into dir/name, creating dir when needed.
func WriteFile(dir, name, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("sitegen: mkdir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("sitegen: write %s: %w", name, err)
	}
	return path, nil
}
