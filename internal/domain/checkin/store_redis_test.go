package checkin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSessionStore(client, time.Hour), mr
}

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	state := &State{
		PatientID: uuid.New(),
		Flow:      FlowNormal,
		Step:      2,
		StartedAt: testNow,
		UpdatedAt: testNow,
		History: []Message{
			{Role: RoleAssistant, Body: "Good morning!", SentAt: testNow},
			{Role: RolePatient, Body: "I'm okay", OptionID: OptFeelingOkay, SentAt: testNow},
		},
	}
	if err := store.Put(ctx, state); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, state.PatientID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Flow != FlowNormal || got.Step != 2 {
		t.Errorf("expected normal step 2, got %s step %d", got.Flow, got.Step)
	}
	if len(got.History) != 2 || got.History[1].OptionID != OptFeelingOkay {
		t.Errorf("history not preserved: %+v", got.History)
	}
}

func TestRedisSessionStoreMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRedisSessionStoreDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	state := &State{PatientID: uuid.New(), Flow: FlowNormal}
	if err := store.Put(ctx, state); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, state.PatientID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, state.PatientID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected session gone, got %v", err)
	}
}

func TestRedisSessionStoreExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	state := &State{PatientID: uuid.New(), Flow: FlowNormal}
	if err := store.Put(ctx, state); err != nil {
		t.Fatalf("put: %v", err)
	}

	mr.FastForward(2 * time.Hour)
	if _, err := store.Get(ctx, state.PatientID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected expired session to be gone, got %v", err)
	}
}
