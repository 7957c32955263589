package model

import (
	"context"
	"strings"
)

// Field describes one column of the fixed job schema.
type Field struct {
	Key   string // storage key
	Label string // human label used in alerts
	Emoji string // prefix used by the emoji alert variant
}

// JobFields is the ordered schema every Record follows. The extractor zips
// field groups with it positionally, so the order mirrors the portal layout.
var JobFields = []Field{
	{Key: "title", Label: "Vaga", Emoji: "💼"},
	{Key: "company", Label: "Empresa", Emoji: "🏢"},
	{Key: "location", Label: "Local", Emoji: "📍"},
	{Key: "course", Label: "Curso", Emoji: "🎓"},
	{Key: "contract", Label: "Contrato", Emoji: "📝"},
	{Key: "workload", Label: "Carga horária", Emoji: "⏰"},
	{Key: "salary", Label: "Bolsa/Salário", Emoji: "💰"},
	{Key: "benefits", Label: "Benefícios", Emoji: "🎁"},
	{Key: "deadline", Label: "Inscrições até", Emoji: "📅"},
}

// FieldCount is the number of fragments that make up one complete job.
var FieldCount = len(JobFields)

// Record is one job posting keyed by JobFields keys.
type Record map[string]string

// NewRecord zips values with JobFields. Extra values are ignored and missing
// ones are left empty, so the result always carries every schema key.
func NewRecord(values []string) Record {
	r := make(Record, len(JobFields))
	for i, f := range JobFields {
		v := ""
		if i < len(values) {
			v = strings.TrimSpace(values[i])
		}
		r[f.Key] = v
	}
	return r
}

// Values returns the record's values in schema order.
func (r Record) Values() []string {
	out := make([]string, len(JobFields))
	for i, f := range JobFields {
		out[i] = r[f.Key]
	}
	return out
}

// Title is a shorthand used in log lines.
func (r Record) Title() string { return r["title"] }

// Fragment is a partial record used for lookups. A stored record matches when
// it holds every key/value pair of the fragment.
type Fragment map[string]string

// Matches reports whether r contains every pair in f.
func (f Fragment) Matches(r Record) bool {
	for k, v := range f {
		got, ok := r[k]
		if !ok || got != v {
			return false
		}
	}
	return true
}

// FragmentOf builds a lookup fragment holding every field of r.
func FragmentOf(r Record) Fragment {
	f := make(Fragment, len(r))
	for k, v := range r {
		f[k] = v
	}
	return f
}

// ListingFetcher fetches the raw listing markup from the portal once.
type ListingFetcher interface {
	FetchListing(ctx context.Context) (string, error)
}

// JobStore persists every record ever seen plus the one-shot seeding flag.
type JobStore interface {
	Created(ctx context.Context) (bool, error)
	MarkCreated(ctx context.Context) error
	Search(ctx context.Context, f Fragment) ([]Record, error)
	Insert(ctx context.Context, r Record) error
	Update(ctx context.Context, f Fragment, r Record) (int, error)
	Remove(ctx context.Context, f Fragment) (int, error)
}

// Sink delivers a rendered message to a destination (chat id, channel, ...).
type Sink interface {
	Send(ctx context.Context, destination, message string) error
}
