package auditlog_test

import (
	"testing"

	"github.com/dalemusser/tokenvote/internal/app/store/activity"
	"github.com/dalemusser/tokenvote/internal/app/system/auditlog"
	"github.com/dalemusser/tokenvote/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const addr = "0x3000000000000000000000000000000000000003"

func TestLogger_NilLogger(t *testing.T) {
	// nil logger should be a no-op (not panic)
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger.Record(ctx, activity.Event{Kind: activity.KindMint})
	logger.SetStatus(ctx, "0x1", activity.StatusConfirmed, "")
}

func TestLogger_LogOnlyWithoutStore(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.ModeAll)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger.Record(ctx, activity.Event{
		Address: addr,
		Kind:    activity.KindMint,
		Amount:  "5",
		Status:  activity.StatusConfirmed,
	})

	entries := logs.FilterMessage("tx activity").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["amount"]; got != "5" {
		t.Errorf("amount: got %v, want 5", got)
	}
}

func TestLogger_FailedIsWarn(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.ModeLog)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger.Record(ctx, activity.Event{Address: addr, Kind: activity.KindDelegate, Status: activity.StatusFailed, Error: "reverted"})

	entries := logs.All()
	if len(entries) != 1 || entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected one warn entry, got %+v", entries)
	}
}

func TestLogger_ConfigOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activity.New(db)
	core, logs := observer.New(zapcore.DebugLevel)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.New(core), auditlog.ModeOff)
	logger.Record(ctx, activity.Event{Address: addr, Kind: activity.KindMint, Status: activity.StatusConfirmed})

	events, err := store.GetByAddress(ctx, addr, 10)
	if err != nil {
		t.Fatalf("GetByAddress failed: %v", err)
	}
	if len(events) != 0 {
		t.Error("expected no events when mode is 'off'")
	}
	if logs.Len() != 0 {
		t.Error("expected no log entries when mode is 'off'")
	}
}

func TestLogger_ConfigDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activity.New(db)
	core, logs := observer.New(zapcore.DebugLevel)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.New(core), auditlog.ModeDB)
	logger.Record(ctx, activity.Event{
		Address: addr,
		Kind:    activity.KindDelegate,
		TxHash:  "0xd",
		Status:  activity.StatusSubmitted,
	})
	logger.SetStatus(ctx, "0xd", activity.StatusConfirmed, "")

	events, err := store.GetByAddress(ctx, addr, 1)
	if err != nil {
		t.Fatalf("GetByAddress failed: %v", err)
	}
	if len(events) != 1 || events[0].Status != activity.StatusConfirmed {
		t.Errorf("expected one confirmed event, got %+v", events)
	}
	if logs.FilterMessage("tx activity").Len() != 0 {
		t.Error("expected no zap entries in 'db' mode")
	}
}

func TestValidMode(t *testing.T) {
	for _, m := range []string{"all", "db", "log", "off"} {
		if !auditlog.ValidMode(m) {
			t.Errorf("ValidMode(%q) = false", m)
		}
	}
	if auditlog.ValidMode("verbose") {
		t.Error(`ValidMode("verbose") = true`)
	}
}
