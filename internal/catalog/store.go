package catalog

import (
	"context"
)

// Loader fetches and parses the JSON payload of a repository.
type Loader interface {
	Fetch(ctx context.Context, ref string) (any, error)
}

// LoadReport records the outcome of loading one repository.
type LoadReport struct {
	Repository string
	Loaded     int
	Skipped    int // entries missing a required field
	Err        error
}

// Store is the ordered, in-memory sequence of entries merged from all
// repositories. A Store is never updated incrementally; rebuild it.
type Store struct {
	entries []Entry
	reports []LoadReport
}

// NewStore creates a store over already-loaded entries.
func NewStore(entries []Entry) *Store {
	return &Store{entries: entries}
}

// Build loads every repository in order and merges their entries. A
// repository that fails to load is recorded in the store's reports and
// contributes nothing; it never aborts the build.
func Build(ctx context.Context, refs []string, loader Loader) *Store {
	s := &Store{}
	for _, ref := range refs {
		report := LoadReport{Repository: ref}
		entries, skipped, err := loadRepository(ctx, ref, loader)
		if err != nil {
			report.Err = err
		} else {
			report.Loaded = len(entries)
			report.Skipped = skipped
			s.entries = append(s.entries, entries...)
		}
		s.reports = append(s.reports, report)
	}
	return s
}

func loadRepository(ctx context.Context, ref string, loader Loader) ([]Entry, int, error) {
	data, err := loader.Fetch(ctx, ref)
	if err != nil {
		return nil, 0, err
	}

	entries, skipped, err := DecodeEntries(data)
	if err != nil {
		return nil, 0, err
	}
	for i := range entries {
		entries[i].Repository = ref
	}
	return entries, skipped, nil
}

// Entries returns the merged entries. Callers must not modify the slice.
func (s *Store) Entries() []Entry {
	return s.entries
}

// Len returns the number of entries in the store.
func (s *Store) Len() int {
	return len(s.entries)
}

// Reports returns one load report per repository, in load order.
func (s *Store) Reports() []LoadReport {
	return s.reports
}

// Failures returns the reports of repositories that failed to load.
func (s *Store) Failures() []LoadReport {
	var failed []LoadReport
	for _, r := range s.reports {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
