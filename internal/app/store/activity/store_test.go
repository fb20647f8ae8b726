package activity_test

import (
	"testing"
	"time"

	"github.com/dalemusser/tokenvote/internal/app/store/activity"
	"github.com/dalemusser/tokenvote/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

const addr = "0x3000000000000000000000000000000000000ABC"

func TestStore_Create_AutoGeneratesID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activity.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Create(ctx, activity.Event{
		Address: addr,
		Kind:    activity.KindMint,
		Amount:  "5",
		TxHash:  "0xmint",
		Status:  activity.StatusConfirmed,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	events, err := store.GetByAddress(ctx, addr, 10)
	if err != nil {
		t.Fatalf("GetByAddress failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID.IsZero() {
		t.Error("expected ID to be auto-generated")
	}
	if events[0].Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestStore_GetByAddress_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activity.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Create(ctx, activity.Event{Address: addr, Kind: activity.KindMint, Status: activity.StatusConfirmed}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for _, q := range []string{addr, "0x3000000000000000000000000000000000000abc"} {
		events, err := store.GetByAddress(ctx, q, 10)
		if err != nil {
			t.Fatalf("GetByAddress(%q) failed: %v", q, err)
		}
		if len(events) != 1 {
			t.Errorf("GetByAddress(%q): got %d events, want 1", q, len(events))
		}
	}
}

func TestStore_GetByAddress_NewestFirstAndLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activity.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour)
	for i, hash := range []string{"0x1", "0x2", "0x3"} {
		err := store.Create(ctx, activity.Event{
			Address:   addr,
			Kind:      activity.KindMint,
			TxHash:    hash,
			Status:    activity.StatusConfirmed,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	events, err := store.GetByAddress(ctx, addr, 2)
	if err != nil {
		t.Fatalf("GetByAddress failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].TxHash != "0x3" || events[1].TxHash != "0x2" {
		t.Errorf("order: got %q, %q; want 0x3, 0x2", events[0].TxHash, events[1].TxHash)
	}
}

func TestStore_SetStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activity.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Create(ctx, activity.Event{
		Address: addr,
		Kind:    activity.KindDelegate,
		TxHash:  "0xdelegate",
		Status:  activity.StatusSubmitted,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.SetStatus(ctx, "0xdelegate", activity.StatusFailed, "reverted"); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	events, err := store.GetByAddress(ctx, addr, 1)
	if err != nil {
		t.Fatalf("GetByAddress failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Status != activity.StatusFailed {
		t.Errorf("Status: got %q, want %q", ev.Status, activity.StatusFailed)
	}
	if ev.Error != "reverted" {
		t.Errorf("Error: got %q, want %q", ev.Error, "reverted")
	}
}

func TestStore_SetStatus_Unknown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activity.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.SetStatus(ctx, "0xnope", activity.StatusConfirmed, "")
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}


func TestStore_CountByKind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activity.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, kind := range []string{activity.KindMint, activity.KindMint, activity.KindDelegate} {
		if err := store.Create(ctx, activity.Event{Address: addr, Kind: kind, Status: activity.StatusConfirmed}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	n, err := store.CountByKind(ctx, addr, activity.KindMint)
	if err != nil {
		t.Fatalf("CountByKind failed: %v", err)
	}
	if n != 2 {
		t.Errorf("CountByKind: got %d, want 2", n)
	}
}
