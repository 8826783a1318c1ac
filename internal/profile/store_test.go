package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/psytech/suvichar/internal/kv"
	"github.com/psytech/suvichar/internal/logging"
)

type countingStore struct {
	kv.Store
	sets int
}

func (c *countingStore) Set(ctx context.Context, key string, value []byte) error {
	c.sets++
	return c.Store.Set(ctx, key, value)
}

type failingStore struct{ kv.Store }

func (failingStore) Set(context.Context, string, []byte) error { return errors.New("disk full") }

func TestSaveThenLoadRoundTrip(t *testing.T) {
	records := kv.NewMemoryStore()
	ctx := context.Background()
	want := Profile{
		Phone:        "+911234567890",
		Purpose:      PurposeBusiness,
		Name:         "Sharma Sweets",
		PhotoURI:     "file:///photos/logo.png",
		ShowDate:     false,
		DateOverride: "2026-10-16T00:00:00.000Z",
		Contact:      "98765 43210",
	}

	if _, err := NewStore(records, logging.Discard()).Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	// a fresh store starts cold and must read the durable record
	got, ok := NewStore(records, logging.Discard()).Load(ctx)
	if !ok {
		t.Fatalf("expected profile to load")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	records := &countingStore{Store: kv.NewMemoryStore()}
	store := NewStore(records, logging.Discard())
	ctx := context.Background()

	first, err := store.GetOrCreate(ctx, "+911234567890", PurposePersonal)
	if err != nil {
		t.Fatalf("first get-or-create: %v", err)
	}
	second, err := store.GetOrCreate(ctx, "+911234567890", PurposePersonal)
	if err != nil {
		t.Fatalf("second get-or-create: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("expected identical profiles (-first +second):\n%s", diff)
	}
	if records.sets != 1 {
		t.Fatalf("expected exactly one write, got %d", records.sets)
	}
}

func TestGetOrCreateDefaults(t *testing.T) {
	cases := []struct {
		purpose Purpose
		name    string
	}{
		{purpose: PurposePersonal, name: "आपका नाम"},
		{purpose: PurposeBusiness, name: "आपका व्यवसाय"},
	}
	for _, tc := range cases {
		store := NewStore(kv.NewMemoryStore(), logging.Discard())
		p, err := store.GetOrCreate(context.Background(), "+911234567890", tc.purpose)
		if err != nil {
			t.Fatalf("get-or-create %s: %v", tc.purpose, err)
		}
		if p.Name != tc.name || !p.ShowDate || p.PhotoURI != "" || p.DateOverride != "" {
			t.Fatalf("unexpected default profile for %s: %+v", tc.purpose, p)
		}
	}
}

func TestGetOrCreateKeepsExistingPurpose(t *testing.T) {
	store := NewStore(kv.NewMemoryStore(), logging.Discard())
	ctx := context.Background()

	if _, err := store.GetOrCreate(ctx, "+911234567890", PurposeBusiness); err != nil {
		t.Fatalf("create: %v", err)
	}
	p, err := store.GetOrCreate(ctx, "+910000000000", PurposePersonal)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Purpose != PurposeBusiness || p.Phone != "+911234567890" {
		t.Fatalf("expected existing profile, got %+v", p)
	}
}

func TestGetOrCreateRejectsUnknownPurpose(t *testing.T) {
	store := NewStore(kv.NewMemoryStore(), logging.Discard())
	if _, err := store.GetOrCreate(context.Background(), "+911234567890", "SCHOOL"); !errors.Is(err, ErrInvalidPurpose) {
		t.Fatalf("expected invalid purpose, got %v", err)
	}
}

func TestLoadTreatsCorruptRecordAsAbsent(t *testing.T) {
	records := kv.NewMemoryStore()
	ctx := context.Background()
	if err := records.Set(ctx, RecordKey, []byte(`{"phone":`)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, ok := NewStore(records, logging.Discard()).Load(ctx); ok {
		t.Fatalf("expected corrupt record to read as absent")
	}
}

func TestSaveRejectsPhoneChange(t *testing.T) {
	store := NewStore(kv.NewMemoryStore(), logging.Discard())
	ctx := context.Background()

	p, err := store.GetOrCreate(ctx, "+911234567890", PurposePersonal)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	p.Phone = "+919999999999"
	if _, err := store.Save(ctx, p); !errors.Is(err, ErrPhoneImmutable) {
		t.Fatalf("expected immutable phone error, got %v", err)
	}
}

func TestSaveFailureLeavesCacheUnchanged(t *testing.T) {
	records := kv.NewMemoryStore()
	ctx := context.Background()
	seed := NewStore(records, logging.Discard())
	original, err := seed.GetOrCreate(ctx, "+911234567890", PurposePersonal)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	store := NewStore(failingStore{Store: records}, logging.Discard())
	edited := original
	edited.Name = "Ravi"
	if _, err := store.Save(ctx, edited); err == nil {
		t.Fatalf("expected write error")
	}
	got, ok := store.Load(ctx)
	if !ok || got.Name != original.Name {
		t.Fatalf("expected original profile after failed save, got %+v", got)
	}
}

func TestClear(t *testing.T) {
	records := kv.NewMemoryStore()
	store := NewStore(records, logging.Discard())
	ctx := context.Background()

	if _, err := store.GetOrCreate(ctx, "+911234567890", PurposePersonal); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := store.Load(ctx); ok {
		t.Fatalf("expected no profile after clear")
	}
	if _, err := records.Get(ctx, RecordKey); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected durable record removed, got %v", err)
	}
}
