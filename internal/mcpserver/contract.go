package mcpserver

// FrontmatterContract describes the recognized front-matter keys and the
// merge rules LLM consumers should assume when proposing metadata.
const FrontmatterContract = `# Ansuz Front Matter Contract

Every Markdown document managed by Ansuz carries a YAML front-matter block.
Metadata proposals are merged into it under the rules below; the document
body is never modified.

## Structure

` + "```" + `markdown
---
title: Human-readable title          # curated by authors, never overwritten
sidebar_label: Short nav label       # curated, never overwritten
sidebar_position: 3                  # curated, never overwritten
description: One-paragraph summary.  # filled only when missing
keywords:                            # union-merged, case-insensitive dedup
  - api gateway
  - routing
author: Docs Team                    # filled only when missing
datePublished: 2026-01-15T00:00:00Z  # filled only when missing
dateModified: 2026-08-26T00:00:00Z   # overwritten on refresh
structuredData:                      # nested mapping, merged field by field
  type: Article                      # Article or DefinedTerm
  headline: Optional headline
---

Body text in standard Markdown. Preserved byte for byte.
` + "```" + `

## Merge rules

1. **title, sidebar_label, sidebar_position** are preserved always. Proposals
   for these keys are ignored, and absent keys stay absent.
2. **description, author, datePublished** fill in only when the document does
   not already have them.
3. **keywords** are union-merged: existing entries keep their order and
   casing; new entries append in proposal order. Duplicates are detected
   case-insensitively on the trimmed form. A legacy comma-separated scalar is
   treated as a sequence.
4. **dateModified** takes the proposed value whenever one is given.
5. **structuredData** merges field by field. A differing ` + "`" + `type` + "`" + ` keeps the
   existing value and is reported as a conflict.
6. Keys not listed here follow rule 2 (fill if missing). The merge never
   invents keys that appear in neither side.

## Formatting guarantees

- The delimiters are ` + "`" + `---` + "`" + ` lines; the opening one is the first line of the
  file.
- Recognized keys serialize in a fixed order (title first, structuredData
  last); unknown keys follow in their original order.
- Two-space indentation, block-style sequences, UTF-8.
- Values may use any language including CJK; keys are English schema fields.

## Example proposal (suggest_metadata output)

` + "```" + `json
{
  "description": "Explains how the gateway routes requests to upstream services.",
  "keywords": ["api gateway", "routing", "upstream"],
  "structuredData": {"type": "DefinedTerm"}
}
` + "```" + `
`
