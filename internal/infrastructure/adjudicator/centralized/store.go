package centralized

import (
	"fmt"
	"path/filepath"

	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/crowdescrow/escrowd/internal/core/ports"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const disputeStoreDir = "adjudicator"

type dispute struct {
	Id       uint64
	Outcomes uint
	Status   ports.DisputeStatus
	Ruling   domain.Ruling
	Window   domain.AppealWindow
	Appeals  int
	// Delivered is set once the ruler accepted or definitively refused the
	// final ruling.
	Delivered bool
}

type disputeStore struct {
	store *badgerhold.Store
}

// newDisputeStore opens the dispute store under datadir, in memory if
// datadir is empty.
func newDisputeStore(datadir string, logger badger.Logger) (*disputeStore, error) {
	var dir string
	if len(datadir) > 0 {
		dir = filepath.Join(datadir, disputeStoreDir)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = logger
	if len(dir) <= 0 {
		opts.InMemory = true
	}

	store, err := badgerhold.Open(badgerhold.Options{
		Encoder: badgerhold.DefaultEncode,
		Decoder: badgerhold.DefaultDecode,
		Options: opts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open dispute store: %w", err)
	}
	return &disputeStore{store}, nil
}

func (s *disputeStore) upsert(d dispute) error {
	return s.store.Upsert(d.Id, d)
}

func (s *disputeStore) all() ([]dispute, error) {
	var disputes []dispute
	if err := s.store.Find(&disputes, nil); err != nil {
		return nil, err
	}
	return disputes, nil
}

func (s *disputeStore) close() error {
	return s.store.Close()
}
