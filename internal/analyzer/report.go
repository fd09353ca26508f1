package analyzer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteJSON renders the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("analyzer: encode report: %w", err)
	}
	return nil
}

// WriteCSV renders one row per (document, issue) pair.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"path", "issue"}); err != nil {
		return fmt.Errorf("analyzer: write csv header: %w", err)
	}
	for _, dr := range r.DocReports {
		for _, issue := range dr.Issues {
			if err := cw.Write([]string{dr.Path, string(issue)}); err != nil {
				return fmt.Errorf("analyzer: write csv row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes seo_report.json and seo_issues.csv into dir, creating it
// when needed.
func (r *Report) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("analyzer: mkdir output: %w", err)
	}

	jf, err := os.Create(filepath.Join(dir, "seo_report.json"))
	if err != nil {
		return fmt.Errorf("analyzer: create report: %w", err)
	}
	defer jf.Close()
	if err := r.WriteJSON(jf); err != nil {
		return err
	}

	cf, err := os.Create(filepath.Join(dir, "seo_issues.csv"))
	if err != nil {
		return fmt.Errorf("analyzer: create csv: %w", err)
	}
	defer cf.Close()
	return r.WriteCSV(cf)
}
