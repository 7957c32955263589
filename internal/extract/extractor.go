package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vagabot/vagabot/internal/model"
)

// Unbounded asks Extract for every group on the page.
const Unbounded = 0

// Extractor turns listing markup into records.
type Extractor struct {
	detector BoundaryDetector
}

// NewExtractor creates an extractor using the given boundary rules.
func NewExtractor(detector BoundaryDetector) *Extractor {
	return &Extractor{detector: detector}
}

// Extract parses markup and returns its records in document order. A positive
// limit keeps only the first limit groups; Unbounded (or any value <= 0)
// keeps them all.
func (e *Extractor) Extract(markup string, limit int) ([]model.Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse listing markup: %w", err)
	}

	groups := e.detector.Detect(doc)
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return Format(groups), nil
}

// Format zips every group with model.JobFields, re-trimming each value and
// preserving input order.
func Format(groups []FieldGroup) []model.Record {
	records := make([]model.Record, 0, len(groups))
	for _, g := range groups {
		values := make([]string, len(g))
		for i, v := range g {
			values[i] = clean(v)
		}
		records = append(records, model.NewRecord(values))
	}
	return records
}
