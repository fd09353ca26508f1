// Package analyzer audits documents for common SEO problems and aggregates
// the findings into a report.
package analyzer

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/frontmatter"
)

// Issue identifies one SEO check failure.
type Issue string

const (
	IssueMissingFrontmatter    Issue = "missing_frontmatter"
	IssueMalformedFrontmatter  Issue = "malformed_frontmatter"
	IssueMissingTitle          Issue = "missing_title"
	IssueDuplicateTitle        Issue = "duplicate_title"
	IssueMissingDescription    Issue = "missing_description"
	IssueShortDescription      Issue = "short_description"
	IssueLongDescription       Issue = "long_description"
	IssueDuplicateDescription  Issue = "duplicate_description"
	IssueMissingKeywords       Issue = "missing_keywords"
	IssueFewKeywords           Issue = "few_keywords"
	IssueManyKeywords          Issue = "many_keywords"
	IssueMissingStructuredData Issue = "missing_structured_data"
	IssueMissingDates          Issue = "missing_dates"
	IssueNoHeadings            Issue = "no_headings"
	IssueLongParagraphs        Issue = "long_paragraphs"
	IssueThinContent           Issue = "thin_content"
	IssueFewInternalLinks      Issue = "few_internal_links"
)

// Limits holds the numeric thresholds behind the checks.
type Limits struct {
	MinDescription     int `yaml:"min_description" json:"min_description"`
	MaxDescription     int `yaml:"max_description" json:"max_description"`
	MinKeywords        int `yaml:"min_keywords" json:"min_keywords"`
	MaxKeywords        int `yaml:"max_keywords" json:"max_keywords"`
	MinContentLength   int `yaml:"min_content_length" json:"min_content_length"`
	MaxParagraphLength int `yaml:"max_paragraph_length" json:"max_paragraph_length"`
	MinInternalLinks   int `yaml:"min_internal_links" json:"min_internal_links"`
}

// DefaultLimits returns the thresholds used when the config leaves them unset.
func DefaultLimits() Limits {
	return Limits{
		MinDescription:     50,
		MaxDescription:     160,
		MinKeywords:        3,
		MaxKeywords:        10,
		MinContentLength:   200,
		MaxParagraphLength: 300,
		MinInternalLinks:   2,
	}
}

// DocReport lists the issues found in one document.
type DocReport struct {
	Path   string  `json:"path"`
	Issues []Issue `json:"issues"`
}

// KeywordCount is one entry of the sitewide keyword tally.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// Report is the aggregate outcome of an analysis pass.
type Report struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Documents   int            `json:"documents"`
	TotalIssues int            `json:"total_issues"`
	Stats       map[Issue]int  `json:"stats"`
	DocReports  []DocReport    `json:"doc_reports"`
	TopKeywords []KeywordCount `json:"top_keywords"`
}

var (
	subheadingRe   = regexp.MustCompile(`(?m)^#{2,4}\s`)
	markdownLinkRe = regexp.MustCompile(`\]\(([^)]+)\)`)
)

// Analyzer accumulates findings across documents. Duplicate detection makes
// it stateful, so one Analyzer serves one sequential pass.
type Analyzer struct {
	limits       Limits
	now          func() time.Time
	docs         int
	titles       map[string]struct{}
	descriptions map[string]struct{}
	keywords     map[string]int
	reports      []DocReport
}

// New creates an Analyzer. Zero-valued limits fall back to the defaults.
func New(limits Limits) *Analyzer {
	def := DefaultLimits()
	if limits.MinDescription <= 0 {
		limits.MinDescription = def.MinDescription
	}
	if limits.MaxDescription <= 0 {
		limits.MaxDescription = def.MaxDescription
	}
	if limits.MinKeywords <= 0 {
		limits.MinKeywords = def.MinKeywords
	}
	if limits.MaxKeywords <= 0 {
		limits.MaxKeywords = def.MaxKeywords
	}
	if limits.MinContentLength <= 0 {
		limits.MinContentLength = def.MinContentLength
	}
	if limits.MaxParagraphLength <= 0 {
		limits.MaxParagraphLength = def.MaxParagraphLength
	}
	if limits.MinInternalLinks <= 0 {
		limits.MinInternalLinks = def.MinInternalLinks
	}
	return &Analyzer{
		limits:       limits,
		now:          time.Now,
		titles:       make(map[string]struct{}),
		descriptions: make(map[string]struct{}),
		keywords:     make(map[string]int),
	}
}

// AnalyzeDocument runs all checks against one document.
func (a *Analyzer) AnalyzeDocument(path string, data []byte) {
	a.docs++
	var issues []Issue

	block, body, err := frontmatter.Parse(data)
	switch {
	case err != nil:
		issues = append(issues, IssueMalformedFrontmatter)
	case block == nil:
		issues = append(issues, IssueMissingFrontmatter)
	default:
		issues = append(issues, a.checkMetadata(block)...)
	}
	issues = append(issues, a.checkBody(body)...)

	if len(issues) > 0 {
		a.reports = append(a.reports, DocReport{Path: path, Issues: issues})
	}
}

func (a *Analyzer) checkMetadata(block *frontmatter.Block) []Issue {
	var issues []Issue

	if title, ok := block.Get("title"); !ok || title.AsScalar() == "" {
		issues = append(issues, IssueMissingTitle)
	} else {
		if _, dup := a.titles[title.AsScalar()]; dup {
			issues = append(issues, IssueDuplicateTitle)
		}
		a.titles[title.AsScalar()] = struct{}{}
	}

	if desc, ok := block.Get("description"); !ok || desc.AsScalar() == "" {
		issues = append(issues, IssueMissingDescription)
	} else {
		n := len([]rune(desc.AsScalar()))
		if n < a.limits.MinDescription {
			issues = append(issues, IssueShortDescription)
		} else if n > a.limits.MaxDescription {
			issues = append(issues, IssueLongDescription)
		}
		if _, dup := a.descriptions[desc.AsScalar()]; dup {
			issues = append(issues, IssueDuplicateDescription)
		}
		a.descriptions[desc.AsScalar()] = struct{}{}
	}

	keywords := keywordList(block)
	switch {
	case len(keywords) == 0:
		issues = append(issues, IssueMissingKeywords)
	case len(keywords) < a.limits.MinKeywords:
		issues = append(issues, IssueFewKeywords)
	case len(keywords) > a.limits.MaxKeywords:
		issues = append(issues, IssueManyKeywords)
	}
	for _, k := range keywords {
		a.keywords[k]++
	}

	if !block.Has("structuredData") {
		issues = append(issues, IssueMissingStructuredData)
	}
	if !block.Has("datePublished") && !block.Has("dateModified") {
		issues = append(issues, IssueMissingDates)
	}
	return issues
}

func (a *Analyzer) checkBody(body string) []Issue {
	var issues []Issue

	if len([]rune(strings.TrimSpace(body))) < a.limits.MinContentLength {
		issues = append(issues, IssueThinContent)
	}
	if !subheadingRe.MatchString(body) {
		issues = append(issues, IssueNoHeadings)
	}

	for _, para := range strings.Split(body, "\n\n") {
		if len([]rune(strings.TrimSpace(para))) > a.limits.MaxParagraphLength {
			issues = append(issues, IssueLongParagraphs)
			break
		}
	}

	if countInternalLinks(body) < a.limits.MinInternalLinks {
		issues = append(issues, IssueFewInternalLinks)
	}
	return issues
}

// Report finalizes the pass. Stats count documents per issue; the keyword
// tally keeps the ten most frequent terms.
func (a *Analyzer) Report() *Report {
	stats := make(map[Issue]int)
	total := 0
	for _, dr := range a.reports {
		for _, issue := range dr.Issues {
			stats[issue]++
			total++
		}
	}

	top := make([]KeywordCount, 0, len(a.keywords))
	for k, c := range a.keywords {
		top = append(top, KeywordCount{Keyword: k, Count: c})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Keyword < top[j].Keyword
	})
	if len(top) > 10 {
		top = top[:10]
	}

	reports := make([]DocReport, len(a.reports))
	copy(reports, a.reports)
	sort.Slice(reports, func(i, j int) bool { return reports[i].Path < reports[j].Path })

	return &Report{
		GeneratedAt: a.now().UTC(),
		Documents:   a.docs,
		TotalIssues: total,
		Stats:       stats,
		DocReports:  reports,
		TopKeywords: top,
	}
}

// keywordList reads keywords from a block, accepting both the sequence form
// and the legacy comma-separated scalar.
func keywordList(block *frontmatter.Block) []string {
	v, ok := block.Get("keywords")
	if !ok {
		return nil
	}
	switch v.Kind() {
	case frontmatter.KindSequence:
		return v.AsSequence()
	case frontmatter.KindScalar:
		if v.AsScalar() == "" {
			return nil
		}
		var out []string
		for _, k := range strings.Split(v.AsScalar(), ",") {
			if k = strings.TrimSpace(k); k != "" {
				out = append(out, k)
			}
		}
		return out
	}
	return nil
}

// countInternalLinks counts Markdown links that point inside the site
// (relative targets or anchor-free doc paths, not absolute URLs).
func countInternalLinks(body string) int {
	n := 0
	for _, m := range markdownLinkRe.FindAllStringSubmatch(body, -1) {
		target := strings.TrimSpace(m[1])
		if target == "" || strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") || strings.HasPrefix(target, "mailto:") {
			continue
		}
		n++
	}
	return n
}
