package extract

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vagabot/vagabot/internal/filter"
	"github.com/vagabot/vagabot/internal/logging"
)

// FieldGroup is the raw run of text fragments extracted for one job, before
// it is zipped with the schema.
type FieldGroup []string

// BoundaryDetector splits a parsed listing page into complete field groups in
// document order. Implementations own every structural rule: which elements
// delimit a job, which fragments count, label stripping and cardinality.
type BoundaryDetector interface {
	Detect(doc *goquery.Document) []FieldGroup
}

// RowDetector is the layout used by the portal: every job sits in a group
// element whose descendant elements hold one value each, optionally prefixed
// by a bold label.
type RowDetector struct {
	GroupSelector    string // e.g. "div.row"
	FragmentSelector string // e.g. "div", matched against all descendants
	LabelSelector    string // e.g. "strong", removed before reading the text
	Cardinality      int    // fragments that make a complete group
	Filter           *filter.MarkerFilter
	Logger           *slog.Logger
}

// NewRowDetector returns a RowDetector for the portal's default layout.
func NewRowDetector(cardinality int, forbidden []string, logger *slog.Logger) *RowDetector {
	if logger == nil {
		logger = logging.Discard()
	}
	return &RowDetector{
		GroupSelector:    "div.row",
		FragmentSelector: "div",
		LabelSelector:    "strong",
		Cardinality:      cardinality,
		Filter:           filter.NewMarkerFilter(forbidden),
		Logger:           logger,
	}
}

// Detect walks the groups in document order. Forbidden groups are skipped
// whole. A group closes only with exactly Cardinality fragments; anything
// shorter or longer is dropped and never carried into the next group.
func (d *RowDetector) Detect(doc *goquery.Document) []FieldGroup {
	var groups []FieldGroup

	doc.Find(d.GroupSelector).Each(func(i int, row *goquery.Selection) {
		if !d.Filter.Allow(row.Text()) {
			d.Logger.Debug("skipping filtered group", "index", i)
			return
		}

		var acc FieldGroup
		row.Find(d.FragmentSelector).Each(func(_ int, el *goquery.Selection) {
			if clean(el.Text()) == "" {
				return
			}
			if d.LabelSelector != "" {
				el.Find(d.LabelSelector).Remove()
			}
			acc = append(acc, clean(el.Text()))
		})

		if len(acc) != d.Cardinality {
			d.Logger.Debug("dropping incomplete group", "index", i, "fragments", len(acc), "want", d.Cardinality)
			return
		}
		groups = append(groups, acc)
	})

	return groups
}

// clean drops line breaks and surrounding whitespace from a fragment.
func clean(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return strings.TrimSpace(s)
}
