package artifact

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisRecords(t *testing.T) *RedisRecords {
	t.Helper()
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("miniredis unavailable: %v", err)
	}
	t.Cleanup(srv.Close)

	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisRecords(client, "artifact:record:")
}

func pendingRecord(name, owner string) Record {
	return Record{
		Name:       name,
		OwnerID:    owner,
		UploadedAt: time.Now().UTC().Truncate(time.Second),
		Status:     StatusPending,
	}
}

func TestRedisClaimRejectsActiveName(t *testing.T) {
	store := newTestRedisRecords(t)
	ctx := context.Background()

	if err := store.Claim(ctx, pendingRecord("a.png", "u1")); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if err := store.Claim(ctx, pendingRecord("a.png", "u2")); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken for pending name, got %v", err)
	}

	if _, err := store.SetStatus(ctx, "a.png", StatusSucceeded); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := store.Claim(ctx, pendingRecord("a.png", "u2")); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken for succeeded name, got %v", err)
	}
}

func TestRedisClaimOverwritesFailedRecord(t *testing.T) {
	store := newTestRedisRecords(t)
	ctx := context.Background()

	if err := store.Claim(ctx, pendingRecord("a.png", "u1")); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := store.SetStatus(ctx, "a.png", StatusFailed); err != nil {
		t.Fatalf("set status: %v", err)
	}

	if err := store.Claim(ctx, pendingRecord("a.png", "u2")); err != nil {
		t.Fatalf("claim over failed record: %v", err)
	}
	rec, err := store.Get(ctx, "a.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.OwnerID != "u2" || rec.Status != StatusPending {
		t.Fatalf("unexpected reclaimed record: %+v", rec)
	}
}

func TestRedisSetStatusLeavesTerminalRecordAlone(t *testing.T) {
	store := newTestRedisRecords(t)
	ctx := context.Background()

	if err := store.Claim(ctx, pendingRecord("a.png", "u1")); err != nil {
		t.Fatalf("claim: %v", err)
	}
	first, err := store.SetStatus(ctx, "a.png", StatusSucceeded)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if first.Status != StatusSucceeded {
		t.Fatalf("expected succeeded, got %s", first.Status)
	}

	// A late writer must not clobber the terminal status.
	second, err := store.SetStatus(ctx, "a.png", StatusFailed)
	if err != nil {
		t.Fatalf("second set status: %v", err)
	}
	if second.Status != StatusSucceeded {
		t.Fatalf("terminal status was clobbered: %s", second.Status)
	}
}

func TestRedisSetStatusMissingRecord(t *testing.T) {
	store := newTestRedisRecords(t)

	if _, err := store.SetStatus(context.Background(), "ghost.png", StatusFailed); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestRedisExistsActive(t *testing.T) {
	store := newTestRedisRecords(t)
	ctx := context.Background()

	if active, err := store.ExistsActive(ctx, "a.png"); err != nil || active {
		t.Fatalf("missing record must not be active, got %v err=%v", active, err)
	}

	if err := store.Claim(ctx, pendingRecord("a.png", "u1")); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if active, err := store.ExistsActive(ctx, "a.png"); err != nil || !active {
		t.Fatalf("pending record must be active, got %v err=%v", active, err)
	}

	if _, err := store.SetStatus(ctx, "a.png", StatusFailed); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if active, err := store.ExistsActive(ctx, "a.png"); err != nil || active {
		t.Fatalf("failed record must not be active, got %v err=%v", active, err)
	}
}

func TestRedisListAndDelete(t *testing.T) {
	store := newTestRedisRecords(t)
	ctx := context.Background()

	for _, name := range []string{"a.png", "b.png"} {
		if err := store.Claim(ctx, pendingRecord(name, "u1")); err != nil {
			t.Fatalf("claim %s: %v", name, err)
		}
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 records, got %d", len(list))
	}

	if err := store.Delete(ctx, "a.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Deleting again is a no-op.
	if err := store.Delete(ctx, "a.png"); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
	if _, err := store.Get(ctx, "a.png"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
