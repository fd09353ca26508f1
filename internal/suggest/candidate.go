// Package suggest produces candidate metadata updates for a document,
// either from an OpenAI-compatible completion endpoint or from static
// rules when the remote service is unavailable.
package suggest

import (
	"context"
	"sort"

	"github.com/starford/ansuz/internal/frontmatter"
)

// Candidate is a proposed metadata update. It covers the recognized key
// schedule only and never touches the document body.
type Candidate struct {
	Description    string            `json:"description,omitempty"`
	Keywords       []string          `json:"keywords,omitempty"`
	Author         string            `json:"author,omitempty"`
	DatePublished  string            `json:"datePublished,omitempty"`
	DateModified   string            `json:"dateModified,omitempty"`
	StructuredData map[string]string `json:"structuredData,omitempty"`
}

// IsZero reports whether the candidate proposes nothing.
func (c Candidate) IsZero() bool {
	return c.Description == "" && len(c.Keywords) == 0 && c.Author == "" &&
		c.DatePublished == "" && c.DateModified == "" && len(c.StructuredData) == 0
}

// Block converts the candidate into a front matter block for merging.
// Empty fields are omitted so the merge never invents keys.
func (c Candidate) Block() *frontmatter.Block {
	b := frontmatter.NewBlock()
	if c.Description != "" {
		b.Set("description", frontmatter.Scalar(c.Description))
	}
	if len(c.Keywords) > 0 {
		b.Set("keywords", frontmatter.Sequence(c.Keywords))
	}
	if c.Author != "" {
		b.Set("author", frontmatter.Scalar(c.Author))
	}
	if c.DatePublished != "" {
		b.Set("datePublished", frontmatter.Scalar(c.DatePublished))
	}
	if c.DateModified != "" {
		b.Set("dateModified", frontmatter.Scalar(c.DateModified))
	}
	if len(c.StructuredData) > 0 {
		sd := frontmatter.NewBlock()
		// "type" leads; the rest in stable name order.
		if t, ok := c.StructuredData["type"]; ok {
			sd.Set("type", frontmatter.Scalar(t))
		}
		keys := make([]string, 0, len(c.StructuredData))
		for k := range c.StructuredData {
			if k != "type" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			sd.Set(k, frontmatter.Scalar(c.StructuredData[k]))
		}
		b.Set("structuredData", frontmatter.Mapping(sd))
	}
	return b
}

// Suggester proposes a metadata update for one document. Implementations
// may block on network I/O; they must respect ctx cancellation.
type Suggester interface {
	Suggest(ctx context.Context, path string, body string, existing *frontmatter.Block) (Candidate, error)
}
