// Package snapshots journals per-cycle portfolio snapshots in a WAL so the
// dashboard stream can replay and tail them.
package snapshots

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rmachado-dev/hodlite/internal/domain"
	"github.com/vadiminshakov/gowal"
)

const (
	walSubdir           = "wal/portfolio"
	snapshotSegmentSize = 1000
	snapshotMaxSegments = 100
	snapshotKeyPrefix   = "portfolio_snapshot_"
)

// WALStore persists portfolio snapshots in an append-only log.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes the journal under <dataDir>/wal/portfolio.
func NewWALStore(dataDir string) (*WALStore, error) {
	cfg := gowal.Config{
		Dir:              filepath.Join(dataDir, walSubdir),
		Prefix:           "snapshot_",
		SegmentThreshold: snapshotSegmentSize,
		MaxSegments:      snapshotMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init portfolio snapshot WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save appends the snapshot to the journal. Callers must set the fiat.
func (s *WALStore) Save(snapshot domain.PortfolioSnapshot) error {
	if s == nil || s.wal == nil {
		return errors.New("portfolio snapshot store is not initialized")
	}
	if snapshot.Fiat == "" {
		return fmt.Errorf("portfolio snapshot fiat is required")
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, "marshal portfolio snapshot")
	}

	key := fmt.Sprintf("%s%s", snapshotKeyPrefix, snapshot.Fiat)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// SnapshotsAfter returns all snapshots written after the given journal index.
func (s *WALStore) SnapshotsAfter(index uint64) ([]domain.PortfolioSnapshotRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("portfolio snapshot store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]domain.PortfolioSnapshotRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		// entries may be gone after segment rotation, skip the holes
		key, payload, err := s.wal.Get(idx)
		if err != nil || !strings.HasPrefix(key, snapshotKeyPrefix) {
			continue
		}
		var snapshot domain.PortfolioSnapshot
		if err := json.Unmarshal(payload, &snapshot); err != nil {
			return nil, errors.Wrap(err, "decode portfolio snapshot")
		}
		records = append(records, domain.PortfolioSnapshotRecord{
			Index:    idx,
			Snapshot: snapshot,
		})
	}

	return records, nil
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
