package store

import (
	"context"
	"fmt"

	supabase "github.com/nedpals/supabase-go"

	"github.com/vagabot/vagabot/internal/model"
)

// Ensure SupabaseStore implements model.JobStore.
var _ model.JobStore = (*SupabaseStore)(nil)

// SupabaseStore keeps records in a hosted Postgres table through the
// Supabase REST API. It expects a "jobs" table with one text column per
// model.JobFields key and a "store_meta" (key, value) table.
type SupabaseStore struct {
	client *supabase.Client
}

type metaRow struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewSupabaseStore creates a SupabaseStore for the given project.
func NewSupabaseStore(url, key string) (*SupabaseStore, error) {
	if url == "" || key == "" {
		return nil, fmt.Errorf("supabase url and key are required")
	}
	return &SupabaseStore{client: supabase.CreateClient(url, key)}, nil
}

func (s *SupabaseStore) Created(_ context.Context) (bool, error) {
	var rows []metaRow
	err := s.client.DB.From("store_meta").Select("*").Eq("key", "created").Execute(&rows)
	if err != nil {
		return false, fmt.Errorf("reading created flag: %w", err)
	}
	return len(rows) > 0 && rows[0].Value == "true", nil
}

func (s *SupabaseStore) MarkCreated(ctx context.Context) error {
	created, err := s.Created(ctx)
	if err != nil {
		return err
	}
	if created {
		return nil
	}
	var rows []metaRow
	if err := s.client.DB.From("store_meta").Insert(metaRow{Key: "created", Value: "true"}).Execute(&rows); err != nil {
		return fmt.Errorf("setting created flag: %w", err)
	}
	return nil
}

func (s *SupabaseStore) Search(_ context.Context, f model.Fragment) ([]model.Record, error) {
	if !knownFragment(f) {
		return nil, nil
	}

	q := s.client.DB.From("jobs").Select("title,company,location,course,contract,workload,salary,benefits,deadline")
	for k, v := range f {
		q.Eq(k, v)
	}

	var rows []jobRow
	if err := q.Execute(&rows); err != nil {
		return nil, fmt.Errorf("searching jobs: %w", err)
	}

	records := make([]model.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.record())
	}
	return records, nil
}

func (s *SupabaseStore) Insert(_ context.Context, r model.Record) error {
	var rows []jobRow
	if err := s.client.DB.From("jobs").Insert(rowFrom(r)).Execute(&rows); err != nil {
		return fmt.Errorf("inserting job %q: %w", r.Title(), err)
	}
	return nil
}

func (s *SupabaseStore) Update(ctx context.Context, f model.Fragment, r model.Record) (int, error) {
	if len(f) == 0 {
		return 0, ErrEmptyFragment
	}
	// PostgREST only echoes affected rows on request, so count them up front.
	matches, err := s.Search(ctx, f)
	if err != nil || len(matches) == 0 {
		return 0, err
	}

	q := s.client.DB.From("jobs").Update(rowFrom(r))
	for k, v := range f {
		q.Eq(k, v)
	}

	var rows []jobRow
	if err := q.Execute(&rows); err != nil {
		return 0, fmt.Errorf("updating jobs: %w", err)
	}
	return len(matches), nil
}

func (s *SupabaseStore) Remove(ctx context.Context, f model.Fragment) (int, error) {
	if len(f) == 0 {
		return 0, ErrEmptyFragment
	}
	matches, err := s.Search(ctx, f)
	if err != nil || len(matches) == 0 {
		return 0, err
	}

	q := s.client.DB.From("jobs").Delete()
	for k, v := range f {
		q.Eq(k, v)
	}

	var rows []jobRow
	if err := q.Execute(&rows); err != nil {
		return 0, fmt.Errorf("removing jobs: %w", err)
	}
	return len(matches), nil
}

func knownFragment(f model.Fragment) bool {
	for k := range f {
		if !knownColumn(k) {
			return false
		}
	}
	return true
}
