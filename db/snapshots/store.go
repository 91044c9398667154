// Package snapshots persists calculation results as immutable audit records.
//
// A snapshot is written once and never updated: saving an id that already
// exists is a conflict. Each snapshot carries the rule version it was
// calculated under and a SHA-256 hash of its payload, so a stored result can
// be checked for tampering long after the rates have changed.
package snapshots

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"travel-mate/core/determinism"
	"travel-mate/internal/errors"
)

var (
	snapshotBucket  = []byte("snapshots")
	tripIndexBucket = []byte("trip_index")
)

// Snapshot is one persisted calculation payload
type Snapshot struct {
	ID          uuid.UUID `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	RuleVersion string    `json:"rule_version"`
	TripIDs     []string  `json:"trip_ids"`

	// PayloadHash is the hex SHA-256 of Payload
	PayloadHash string `json:"payload_hash"`

	// Payload is stored byte for byte as it was saved
	Payload []byte `json:"payload"`
}

// Store defines the snapshot persistence operations
type Store interface {
	// Create stamps a new snapshot with an id, time and hash and saves it
	Create(ctx context.Context, ruleVersion string, tripIDs []string, payload []byte) (*Snapshot, error)

	// Save writes a fully populated snapshot. Existing ids are never overwritten.
	Save(ctx context.Context, s *Snapshot) error

	// Get retrieves a snapshot by ID
	Get(ctx context.Context, id uuid.UUID) (*Snapshot, error)

	// List returns all snapshots, oldest first
	List(ctx context.Context) ([]*Snapshot, error)

	// ListByTrip returns the snapshots that include a trip, oldest first
	ListByTrip(ctx context.Context, tripID string) ([]*Snapshot, error)

	// Verify recomputes the payload hash of a stored snapshot
	Verify(ctx context.Context, id uuid.UUID) error

	Close() error
}

var _ Store = (*BoltStore)(nil)

// Option configures a BoltStore
type Option func(*BoltStore)

// WithIDGenerator overrides uuid.New.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(s *BoltStore) { s.newID = fn }
}

// WithClock overrides time.Now.
func WithClock(fn func() time.Time) Option {
	return func(s *BoltStore) { s.now = fn }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *BoltStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// BoltStore implements Store using bbolt
type BoltStore struct {
	db     *bbolt.DB
	newID  func() uuid.UUID
	now    func() time.Time
	logger *zap.Logger
}

// Open opens or creates the store at path. Parent directories are created.
func Open(path string, opts ...Option) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrapf(errors.TypeConfig, err, "creating store directory for %s", path)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(errors.TypeConfig, err, "opening snapshot store %s", path)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{snapshotBucket, tripIndexBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errors.Internal("creating buckets", err)
	}

	s := &BoltStore{
		db:     db,
		newID:  uuid.New,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create stamps and saves a new snapshot
func (s *BoltStore) Create(ctx context.Context, ruleVersion string, tripIDs []string, payload []byte) (*Snapshot, error) {
	snap := &Snapshot{
		ID:          s.newID(),
		CreatedAt:   s.now().UTC(),
		RuleVersion: ruleVersion,
		TripIDs:     append([]string(nil), tripIDs...),
		PayloadHash: determinism.ComputeHash(payload).Hex(),
		Payload:     append([]byte(nil), payload...),
	}
	if err := s.Save(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Save writes a snapshot once
func (s *BoltStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap.ID == uuid.Nil {
		return errors.New(errors.TypeInput, "snapshot id is required")
	}
	if snap.RuleVersion == "" {
		return errors.New(errors.TypeInput, "snapshot rule_version is required")
	}
	if got := determinism.ComputeHash(snap.Payload).Hex(); got != snap.PayloadHash {
		return errors.Newf(errors.TypeInput, "snapshot %s payload does not match its hash", snap.ID)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return errors.Internal("marshaling snapshot", err)
	}
	key := []byte(snap.ID.String())

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(snapshotBucket)
		if bucket.Get(key) != nil {
			return errors.Conflict("snapshot", snap.ID.String())
		}
		if err := bucket.Put(key, data); err != nil {
			return err
		}
		index := tx.Bucket(tripIndexBucket)
		for _, tripID := range snap.TripIDs {
			if err := index.Put(tripKey(tripID, snap.ID), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.IsType(err, errors.TypeConflict) {
			return err
		}
		return errors.Internal("saving snapshot", err)
	}

	s.logger.Debug("snapshot saved",
		zap.String("snapshot_id", snap.ID.String()),
		zap.String("rule_version", snap.RuleVersion),
		zap.Strings("trip_ids", snap.TripIDs),
	)
	return nil
}

// Get retrieves a snapshot by ID
func (s *BoltStore) Get(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var snap *Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		snap, err = get(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// List returns all snapshots, oldest first
func (s *BoltStore) List(ctx context.Context) ([]*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snaps := make([]*Snapshot, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(snapshotBucket).ForEach(func(k, v []byte) error {
			var snap Snapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				return errors.Wrapf(errors.TypeInternal, err, "unmarshaling snapshot %s", k)
			}
			snaps = append(snaps, &snap)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortByCreation(snaps)
	return snaps, nil
}

// ListByTrip returns the snapshots that include tripID, oldest first
func (s *BoltStore) ListByTrip(ctx context.Context, tripID string) ([]*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snaps := make([]*Snapshot, 0)
	prefix := tripPrefix(tripID)
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(tripIndexBucket).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			id, err := uuid.ParseBytes(k[len(prefix):])
			if err != nil {
				return errors.Wrapf(errors.TypeInternal, err, "corrupt trip index key %q", k)
			}
			snap, err := get(tx, id)
			if err != nil {
				return err
			}
			snaps = append(snaps, snap)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByCreation(snaps)
	return snaps, nil
}

// Verify checks that a stored payload still matches its hash
func (s *BoltStore) Verify(ctx context.Context, id uuid.UUID) error {
	snap, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if got := determinism.ComputeHash(snap.Payload).Hex(); got != snap.PayloadHash {
		return errors.Newf(errors.TypeInternal, "snapshot %s payload hash mismatch", id).
			WithContext("expected", snap.PayloadHash).
			WithContext("actual", got)
	}
	return nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func get(tx *bbolt.Tx, id uuid.UUID) (*Snapshot, error) {
	data := tx.Bucket(snapshotBucket).Get([]byte(id.String()))
	if data == nil {
		return nil, errors.NotFound("snapshot", id.String())
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrapf(errors.TypeInternal, err, "unmarshaling snapshot %s", id)
	}
	return &snap, nil
}

func sortByCreation(snaps []*Snapshot) {
	determinism.SortSlice(snaps, func(a, b *Snapshot) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

// Trip index keys are "<len>:<trip id><snapshot id>" so one trip id can never
// be a prefix of another.
func tripPrefix(tripID string) []byte {
	return []byte(fmt.Sprintf("%d:%s", len(tripID), tripID))
}

func tripKey(tripID string, id uuid.UUID) []byte {
	return append(tripPrefix(tripID), id.String()...)
}
