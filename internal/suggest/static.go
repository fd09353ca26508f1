package suggest

import (
	"context"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/frontmatter"
)

const (
	defaultDescriptionLimit = 150
	defaultMaxKeywords      = 5
)

var (
	headingRe  = regexp.MustCompile(`(?m)^#{1,6}\s.*$`)
	linkRe     = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	emphasisRe = regexp.MustCompile(`[*_]{1,2}([^*_]+)[*_]{1,2}`)
	codeRe     = regexp.MustCompile("`[^`]*`")
	htmlTagRe  = regexp.MustCompile(`<[^>]+>`)

	// hanRunRe matches maximal runs of Han characters. Runs are then split
	// into overlapping 2 to 4 character windows, so a term like 十神 is
	// counted every time it appears, wherever it sits inside a sentence.
	hanRunRe = regexp.MustCompile(`\p{Han}+`)
	wordRe   = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9-]{3,}`)
)

const (
	minHanGram = 2
	maxHanGram = 4
)

// latinStopwords are skipped by the keyword frequency counter.
var latinStopwords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {}, "will": {},
	"your": {}, "when": {}, "which": {}, "their": {}, "them": {}, "then": {},
	"than": {}, "they": {}, "there": {}, "these": {}, "those": {}, "into": {},
	"also": {}, "more": {}, "some": {}, "such": {}, "each": {}, "only": {},
	"other": {}, "about": {}, "after": {}, "before": {}, "between": {},
	"because": {}, "where": {}, "while": {}, "would": {}, "could": {},
	"should": {}, "does": {}, "been": {}, "being": {}, "over": {}, "under": {},
}

// StaticOptions configures the rule-based candidate generator.
type StaticOptions struct {
	Author string
	// DirectoryKeywords maps a directory base name to its base keywords.
	DirectoryKeywords map[string][]string
	// BaseKeywords apply when the directory has no entry.
	BaseKeywords []string
	// GlossaryDirs lists directory base names whose documents describe a
	// single term (structuredData type DefinedTerm). Files matching
	// IndexSuffix keep the Article type.
	GlossaryDirs []string
	IndexSuffix  string
	MaxKeywords  int
	// DescriptionLimit caps the generated description length in runes.
	DescriptionLimit int
	// Now supplies timestamps; defaults to time.Now. Injected for tests.
	Now func() time.Time
}

// Static derives a candidate update from the document alone: description
// from the first paragraph, keywords from frequency analysis plus the
// per-directory base set, structured data type from path rules.
// It never fails, making it a safe fallback when the remote service is down.
type Static struct {
	opts     StaticOptions
	glossary map[string]struct{}
}

// NewStatic builds a Static generator.
func NewStatic(opts StaticOptions) *Static {
	if opts.MaxKeywords <= 0 {
		opts.MaxKeywords = defaultMaxKeywords
	}
	if opts.DescriptionLimit <= 0 {
		opts.DescriptionLimit = defaultDescriptionLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	glossary := make(map[string]struct{}, len(opts.GlossaryDirs))
	for _, d := range opts.GlossaryDirs {
		glossary[d] = struct{}{}
	}
	return &Static{opts: opts, glossary: glossary}
}

// Suggest implements Suggester. The error is always nil.
func (s *Static) Suggest(_ context.Context, docPath string, body string, existing *frontmatter.Block) (Candidate, error) {
	now := s.opts.Now().UTC().Format(time.RFC3339)

	cand := Candidate{
		Author: s.opts.Author,
		StructuredData: map[string]string{
			"type": s.structuredType(docPath),
		},
	}
	if !existing.Has("datePublished") {
		cand.DatePublished = now
	}
	if !existing.Has("dateModified") {
		cand.DateModified = now
	}
	if !existing.Has("description") {
		cand.Description = GenerateDescription(body, s.opts.DescriptionLimit)
	}

	dir := path.Base(path.Dir(docPath))
	base, ok := s.opts.DirectoryKeywords[dir]
	if !ok {
		base = s.opts.BaseKeywords
	}
	cand.Keywords = append(append([]string{}, base...), ExtractKeywords(body, s.opts.MaxKeywords)...)

	return cand, nil
}

func (s *Static) structuredType(docPath string) string {
	dir := path.Base(path.Dir(docPath))
	if _, ok := s.glossary[dir]; ok {
		if s.opts.IndexSuffix == "" || !strings.HasSuffix(docPath, s.opts.IndexSuffix) {
			return "DefinedTerm"
		}
	}
	return "Article"
}

// GenerateDescription returns the first non-empty paragraph of the body,
// with Markdown markup stripped and the result capped at limit runes.
func GenerateDescription(body string, limit int) string {
	plain := headingRe.ReplaceAllString(body, "")
	plain = codeRe.ReplaceAllString(plain, "")
	plain = linkRe.ReplaceAllString(plain, "$1")
	plain = emphasisRe.ReplaceAllString(plain, "$1")
	plain = htmlTagRe.ReplaceAllString(plain, "")

	for _, para := range strings.Split(plain, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" || strings.HasPrefix(para, "---") {
			continue
		}
		para = strings.Join(strings.Fields(para), " ")
		runes := []rune(para)
		if len(runes) > limit {
			return string(runes[:limit]) + "..."
		}
		return para
	}
	return ""
}

// ExtractKeywords counts candidate terms in the body and returns the most
// frequent max of them. Han text is counted by overlapping character
// windows, Latin text by whole words; ties keep first-seen order so the
// output is deterministic.
func ExtractKeywords(body string, max int) []string {
	freq := make(map[string]int)
	order := make(map[string]int)
	record := func(term string) {
		if _, seen := freq[term]; !seen {
			order[term] = len(order)
		}
		freq[term]++
	}

	for _, run := range hanRunRe.FindAllString(body, -1) {
		runes := []rune(run)
		for n := minHanGram; n <= maxHanGram && n <= len(runes); n++ {
			for i := 0; i+n <= len(runes); i++ {
				record(string(runes[i : i+n]))
			}
		}
	}
	for _, word := range wordRe.FindAllString(body, -1) {
		lower := strings.ToLower(word)
		if _, stop := latinStopwords[lower]; stop {
			continue
		}
		record(lower)
	}

	terms := make([]string, 0, len(freq))
	for term := range freq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return order[terms[i]] < order[terms[j]]
	})

	if len(terms) > max {
		terms = terms[:max]
	}
	return terms
}
