package snapshots

import (
	"context"
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.etcd.io/bbolt"

	"travel-mate/internal/errors"
)

var _ = Describe("BoltStore", func() {
	var (
		ctx    context.Context
		dbPath string
		store  *BoltStore
		ids    []uuid.UUID
		clock  time.Time
	)

	nextID := func() uuid.UUID {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	BeforeEach(func() {
		ctx = context.Background()
		dbPath = filepath.Join(GinkgoT().TempDir(), "nested", "snapshots.db")
		ids = []uuid.UUID{
			uuid.MustParse("9b2f1c3e-0000-4000-8000-000000000001"),
			uuid.MustParse("1a2f1c3e-0000-4000-8000-000000000002"),
			uuid.MustParse("5c2f1c3e-0000-4000-8000-000000000003"),
		}
		clock = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		var err error
		store, err = Open(dbPath,
			WithIDGenerator(nextID),
			WithClock(func() time.Time {
				clock = clock.Add(time.Minute)
				return clock
			}),
		)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if store != nil {
			store.Close()
		}
	})

	Describe("Create", func() {
		var (
			snap    *Snapshot
			err     error
			payload []byte
		)

		BeforeEach(func() {
			payload = []byte("{\n  \"rule_version\": \"DE_TRAVEL_RULES_2026_01\"\n}\n")
		})

		JustBeforeEach(func() {
			snap, err = store.Create(ctx, "DE_TRAVEL_RULES_2026_01", []string{"t1", "t2"}, payload)
		})

		It("stamps id, time and hash", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.ID.String()).To(Equal("9b2f1c3e-0000-4000-8000-000000000001"))
			Expect(snap.CreatedAt).To(BeTemporally("==", time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC)))
			Expect(snap.PayloadHash).To(HaveLen(64))
		})

		It("stores the payload byte for byte", func() {
			saved, getErr := store.Get(ctx, snap.ID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(saved.Payload).To(Equal(payload))
			Expect(saved.RuleVersion).To(Equal("DE_TRAVEL_RULES_2026_01"))
			Expect(saved.TripIDs).To(Equal([]string{"t1", "t2"}))
		})

		It("copies the caller's payload", func() {
			payload[0] = '['
			saved, getErr := store.Get(ctx, snap.ID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(saved.Payload[0]).To(Equal(byte('{')))
		})
	})

	Describe("Save", func() {
		var snap *Snapshot

		BeforeEach(func() {
			var err error
			snap, err = store.Create(ctx, "v1", []string{"t1"}, []byte(`{"a":1}`))
			Expect(err).NotTo(HaveOccurred())
		})

		When("the id already exists", func() {
			It("refuses to overwrite", func() {
				again := *snap
				again.RuleVersion = "v2"
				err := store.Save(ctx, &again)
				Expect(errors.IsType(err, errors.TypeConflict)).To(BeTrue())

				saved, getErr := store.Get(ctx, snap.ID)
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.RuleVersion).To(Equal("v1"))
			})
		})

		When("the hash does not match the payload", func() {
			It("rejects the snapshot", func() {
				bad := *snap
				bad.ID = uuid.New()
				bad.Payload = []byte(`{"a":2}`)
				Expect(errors.IsType(store.Save(ctx, &bad), errors.TypeInput)).To(BeTrue())
			})
		})

		When("required fields are missing", func() {
			It("rejects a nil id", func() {
				bad := *snap
				bad.ID = uuid.Nil
				Expect(errors.IsType(store.Save(ctx, &bad), errors.TypeInput)).To(BeTrue())
			})

			It("rejects an empty rule version", func() {
				bad := *snap
				bad.ID = uuid.New()
				bad.RuleVersion = ""
				Expect(errors.IsType(store.Save(ctx, &bad), errors.TypeInput)).To(BeTrue())
			})
		})

		When("the context is cancelled", func() {
			It("returns the context error", func() {
				cancelled, cancel := context.WithCancel(ctx)
				cancel()
				_, err := store.Create(cancelled, "v1", nil, []byte(`{}`))
				Expect(err).To(MatchError(context.Canceled))
			})
		})
	})

	Describe("Get", func() {
		It("reports missing snapshots as not found", func() {
			_, err := store.Get(ctx, uuid.New())
			Expect(errors.IsType(err, errors.TypeNotFound)).To(BeTrue())
		})
	})

	Describe("List and ListByTrip", func() {
		BeforeEach(func() {
			for _, trips := range [][]string{{"t1"}, {"t2", "t10"}, {"t1", "t2"}} {
				_, err := store.Create(ctx, "v1", trips, []byte(`{}`))
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("lists all snapshots oldest first", func() {
			snaps, err := store.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(snaps).To(HaveLen(3))
			Expect(snaps[0].ID.String()).To(HavePrefix("9b2f"))
			Expect(snaps[1].ID.String()).To(HavePrefix("1a2f"))
			Expect(snaps[2].ID.String()).To(HavePrefix("5c2f"))
		})

		It("lists the snapshots of one trip", func() {
			snaps, err := store.ListByTrip(ctx, "t1")
			Expect(err).NotTo(HaveOccurred())
			Expect(snaps).To(HaveLen(2))
			Expect(snaps[0].TripIDs).To(Equal([]string{"t1"}))
			Expect(snaps[1].TripIDs).To(Equal([]string{"t1", "t2"}))
		})

		It("does not match trip ids sharing a prefix", func() {
			snaps, err := store.ListByTrip(ctx, "t10")
			Expect(err).NotTo(HaveOccurred())
			Expect(snaps).To(HaveLen(1))

			snaps, err = store.ListByTrip(ctx, "t")
			Expect(err).NotTo(HaveOccurred())
			Expect(snaps).To(BeEmpty())
		})
	})

	Describe("Verify", func() {
		var snap *Snapshot

		BeforeEach(func() {
			var err error
			snap, err = store.Create(ctx, "v1", []string{"t1"}, []byte(`{"net":"39.20"}`))
			Expect(err).NotTo(HaveOccurred())
		})

		It("accepts an untouched snapshot", func() {
			Expect(store.Verify(ctx, snap.ID)).To(Succeed())
		})

		It("detects a tampered payload", func() {
			err := store.db.Update(func(tx *bbolt.Tx) error {
				bucket := tx.Bucket(snapshotBucket)
				var stored Snapshot
				if err := json.Unmarshal(bucket.Get([]byte(snap.ID.String())), &stored); err != nil {
					return err
				}
				stored.Payload = []byte(`{"net":"99.20"}`)
				data, err := json.Marshal(stored)
				if err != nil {
					return err
				}
				return bucket.Put([]byte(snap.ID.String()), data)
			})
			Expect(err).NotTo(HaveOccurred())

			err = store.Verify(ctx, snap.ID)
			Expect(errors.IsType(err, errors.TypeInternal)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("hash mismatch"))
		})
	})

	Describe("reopening", func() {
		It("keeps snapshots across restarts", func() {
			snap, err := store.Create(ctx, "v1", []string{"t1"}, []byte(`{}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(store.Close()).To(Succeed())

			store, err = Open(dbPath)
			Expect(err).NotTo(HaveOccurred())
			saved, err := store.Get(ctx, snap.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.CreatedAt).To(BeTemporally("==", snap.CreatedAt))
		})
	})
})
