// Package lots persists the lot collection as a single JSON file. Reads and
// writes cover the whole collection, there is no partial update primitive.
package lots

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rmachado-dev/hodlite/internal/domain"
)

const fileName = "lots.json"

// Store is a whole-file JSON lot repository.
type Store struct {
	path string
}

// NewStore creates the data directory if needed and returns a store backed by
// <dataDir>/lots.json.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	return &Store{path: filepath.Join(dataDir, fileName)}, nil
}

// Load reads all lots in storage order. A missing file is an empty collection.
func (s *Store) Load() ([]domain.Lot, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.Lot{}, nil
		}
		return nil, errors.Wrap(err, "read lots file")
	}
	if len(payload) == 0 {
		return []domain.Lot{}, nil
	}

	var lots []domain.Lot
	if err := json.Unmarshal(payload, &lots); err != nil {
		return nil, errors.Wrap(err, "decode lots file")
	}
	return lots, nil
}

// Save writes the whole collection atomically via a temp file.
func (s *Store) Save(lots []domain.Lot) error {
	if lots == nil {
		lots = []domain.Lot{}
	}

	payload, err := json.MarshalIndent(lots, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode lots")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write lots temp file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "persist lots")
	}
	return nil
}

// Add appends a lot to the collection.
func (s *Store) Add(lot domain.Lot) error {
	all, err := s.Load()
	if err != nil {
		return err
	}
	return s.Save(append(all, lot))
}

// Delete removes the lot with the given id and reports whether it was
// present. Deleting an absent id is not an error.
func (s *Store) Delete(id int64) (bool, error) {
	all, err := s.Load()
	if err != nil {
		return false, err
	}

	kept := all[:0]
	removed := false
	for _, lot := range all {
		if lot.ID == id {
			removed = true
			continue
		}
		kept = append(kept, lot)
	}
	if !removed {
		return false, nil
	}

	return true, s.Save(kept)
}
