package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds every store call made by a Repository.
const DefaultTimeout = 5 * time.Second

// Repository fronts a Store with the built-in seed set, so that games can
// always start even when the store is empty or down.
type Repository struct {
	store   Store
	seed    map[string][]Record
	timeout time.Duration
	log     zerolog.Logger
}

func NewRepository(store Store, timeout time.Duration, logger zerolog.Logger) *Repository {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Repository{
		store:   store,
		seed:    SeedSet(),
		timeout: timeout,
		log:     logger.With().Str("component", "tasks").Logger(),
	}
}

// FetchShuffled returns at most count distinct records from category in
// random order. Store failures and empty categories fall back to the seed
// set; the caller never sees an error.
func (r *Repository) FetchShuffled(ctx context.Context, category string, count int, level string) []Record {
	if count <= 0 {
		return nil
	}

	if !KnownCategory(category) {
		r.log.Warn().Str("category", category).Msg("fetch for unknown category")
		return nil
	}

	records, err := r.List(ctx, category, level)
	switch {
	case err != nil:
		r.log.Warn().Err(err).Str("category", category).Msg("task store unavailable, serving seed set")
		records = r.fallback(category, level)
	case len(records) == 0:
		r.log.Info().Str("category", category).Str("level", level).Msg("task store empty, serving seed set")
		records = r.fallback(category, level)
	}

	records = dedupe(records)

	rand.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})

	if len(records) > count {
		records = records[:count]
	}

	return records
}

// List returns the stored records of category, without fallback.
func (r *Repository) List(ctx context.Context, category, level string) ([]Record, error) {
	if !KnownCategory(category) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.store.List(ctx, category, level)
}

// Add validates raw against the category's shape and stores it.
func (r *Repository) Add(ctx context.Context, category string, raw json.RawMessage) (Record, error) {
	rec, err := Decode(category, raw)
	if err != nil {
		return Record{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.store.Add(ctx, rec)
}

// Update merges patch into the stored record and re-validates it.
func (r *Repository) Update(ctx context.Context, category, id string, patch json.RawMessage) (Record, error) {
	if !KnownCategory(category) {
		return Record{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	current, err := r.store.Get(ctx, category, id)
	if err != nil {
		return Record{}, err
	}

	merged, err := Merge(current, patch)
	if err != nil {
		return Record{}, err
	}

	return r.store.Update(ctx, merged)
}

func (r *Repository) Delete(ctx context.Context, category, id string) error {
	if !KnownCategory(category) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.store.Delete(ctx, category, id)
}

// Seed copies the built-in set into every category of the store that is
// still empty. It returns the number of records written.
func (r *Repository) Seed(ctx context.Context) (int, error) {
	written := 0

	for _, category := range Categories() {
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		n, err := r.store.Count(ctx, category)
		if err != nil {
			cancel()
			return written, fmt.Errorf("count %s: %w", category, err)
		}
		if n > 0 {
			cancel()
			continue
		}

		for _, rec := range r.seed[category] {
			if _, err := r.store.Add(ctx, rec); err != nil {
				cancel()
				return written, fmt.Errorf("seed %s: %w", category, err)
			}
			written++
		}
		cancel()

		r.log.Info().Str("category", category).Int("records", len(r.seed[category])).Msg("seeded empty category")
	}

	return written, nil
}

func (r *Repository) fallback(category, level string) []Record {
	out := make([]Record, 0, len(r.seed[category]))
	for _, rec := range r.seed[category] {
		if levelMatches(rec.Level, level) {
			out = append(out, rec.clone())
		}
	}
	return out
}

func dedupe(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := records[:0]
	for _, rec := range records {
		if rec.ID != "" {
			if _, dup := seen[rec.ID]; dup {
				continue
			}
			seen[rec.ID] = struct{}{}
		}
		out = append(out, rec)
	}
	return out
}
