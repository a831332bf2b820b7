package storage

import (
	"testing"
	"time"

	"github.com/samvad-hq/samvad-httpkit/internal/domain"
)

func TestBoltStoreRecordsAndExpiresOutcomes(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		OutcomeTTL:      1 * time.Second,
		CleanupInterval: 1 * time.Second,
	}

	storeRaw, err := openBolt(dir+"/outcomes.db", opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	if _, found, err := store.Last("plan-1"); err != nil || found {
		t.Fatalf("expected no outcome, found=%v err=%v", found, err)
	}

	want := domain.Outcome{PlanID: "plan-1", Method: "GET", StatusCode: 200, Kind: domain.KindOK}
	if err := store.Record(want); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, found, err := store.Last("plan-1")
	if err != nil || !found {
		t.Fatalf("expected recorded outcome, found=%v err=%v", found, err)
	}
	if got.StatusCode != 200 || got.Kind != domain.KindOK {
		t.Fatalf("unexpected outcome %#v", got)
	}

	// Fast-forward cleanup cadence and trigger expiry.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	if _, found, err := store.Last("plan-1"); err != nil || found {
		t.Fatalf("expected outcome to expire, found=%v err=%v", found, err)
	}
}

func TestBoltStoreRecordRejectsMissingPlanID(t *testing.T) {
	storeRaw, err := openBolt(t.TempDir()+"/outcomes.db", normalizeOptions(Options{}))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	defer storeRaw.Close()

	if err := storeRaw.Record(domain.Outcome{}); err == nil {
		t.Fatalf("expected error for outcome without plan id")
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Record(domain.Outcome{PlanID: "x"}); err != nil {
		t.Fatalf("noop store Record: %v", err)
	}
	if _, found, _ := store.Last("x"); found {
		t.Fatalf("noop store should never find outcomes")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported storage type")
	}
}
