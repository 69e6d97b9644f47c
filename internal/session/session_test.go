package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"oratoria.app/internal/catalog"
	"oratoria.app/internal/persistence/profile"
	"oratoria.app/internal/progress"
	"oratoria.app/internal/protocol"
)

// memStore is an in-memory profile.Store for hub and session tests.
type memStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	fail    bool
	loadErr error
}

func newMemStore() *memStore {
	return &memStore{blobs: map[string][]byte{}}
}

func (m *memStore) Load(_ context.Context, userID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	b, ok := m.blobs[userID]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return b, nil
}

func (m *memStore) Save(_ context.Context, userID string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("store down")
	}
	m.blobs[userID] = blob
	return nil
}

func (m *memStore) Close() error { return nil }

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestHub(t *testing.T, store profile.Store) (*Hub, *profile.Saver) {
	t.Helper()
	cat, err := catalog.Build()
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	saver := profile.NewSaver(store, time.Millisecond, testLogger())
	h := NewHub(cat, store, saver, testLogger())
	t.Cleanup(func() {
		h.Close()
		saver.Close()
	})
	return h, saver
}

func decodeState(t *testing.T, blob []byte) *progress.State {
	t.Helper()
	s, err := progress.Decode(blob)
	if err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return s
}

func submit(t *testing.T, s *Session, msg protocol.IntentMsg) protocol.ResultMsg {
	t.Helper()
	res, err := s.Submit(context.Background(), msg)
	if err != nil {
		t.Fatalf("submit %s: %v", msg.Intent, err)
	}
	return res
}

func TestHub_Get_NewUserStartsFromDefaults(t *testing.T) {
	h, _ := newTestHub(t, newMemStore())

	s, err := h.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	blob, err := s.StateBlob(context.Background())
	if err != nil {
		t.Fatalf("state blob: %v", err)
	}
	st := decodeState(t, blob)
	if st.Level != 1 || st.XP != 0 || st.Coins != 50 {
		t.Fatalf("defaults: level=%d xp=%d coins=%d", st.Level, st.XP, st.Coins)
	}
}

func TestHub_Get_LoadsStoredProfile(t *testing.T) {
	store := newMemStore()
	seed := progress.New()
	seed.Level = 7
	seed.Coins = 300
	blob, err := seed.Encode()
	if err != nil {
		t.Fatalf("encode seed: %v", err)
	}
	store.blobs["u1"] = blob

	h, _ := newTestHub(t, store)
	s, err := h.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got, err := s.StateBlob(context.Background())
	if err != nil {
		t.Fatalf("state blob: %v", err)
	}
	st := decodeState(t, got)
	if st.Level != 7 || st.Coins != 300 {
		t.Fatalf("loaded: level=%d coins=%d", st.Level, st.Coins)
	}
}

func TestHub_Get_SharesSessionPerUser(t *testing.T) {
	h, _ := newTestHub(t, newMemStore())
	a, err := h.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get a: %v", err)
	}
	b, err := h.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get b: %v", err)
	}
	if a != b {
		t.Fatalf("expected one session per user")
	}
	c, err := h.Get(context.Background(), "u2")
	if err != nil {
		t.Fatalf("get c: %v", err)
	}
	if c == a {
		t.Fatalf("distinct users must not share a session")
	}
}

func TestHub_Get_CorruptBlobFallsBackToDefaults(t *testing.T) {
	store := newMemStore()
	store.blobs["u1"] = []byte("{not json")

	h, _ := newTestHub(t, store)
	s, err := h.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	blob, err := s.StateBlob(context.Background())
	if err != nil {
		t.Fatalf("state blob: %v", err)
	}
	st := decodeState(t, blob)
	if st.Level != 1 || st.Coins != 50 {
		t.Fatalf("expected defaults, got level=%d coins=%d", st.Level, st.Coins)
	}
}

func TestHub_Get_RefusesSessionOnStoreError(t *testing.T) {
	store := newMemStore()
	store.loadErr = errors.New("store down")

	h, _ := newTestHub(t, store)
	if _, err := h.Get(context.Background(), "u1"); err == nil {
		t.Fatalf("expected load error")
	}
}

func TestHub_Get_EmptyUserID(t *testing.T) {
	h, _ := newTestHub(t, newMemStore())
	if _, err := h.Get(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}

func TestSession_CompleteQuest_ResultCarriesState(t *testing.T) {
	h, _ := newTestHub(t, newMemStore())
	s, err := h.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	res := submit(t, s, protocol.IntentMsg{
		Type: protocol.TypeIntent, ID: "r1",
		Intent: protocol.IntentCompleteQuest, QuestID: "q1-1",
	})
	if !res.Ok {
		t.Fatalf("result not ok: code=%s msg=%s", res.Code, res.Message)
	}
	if res.Ref != "r1" {
		t.Fatalf("ref=%q want r1", res.Ref)
	}
	st := decodeState(t, res.State)
	if !st.QuestsCompleted["q1-1"] {
		t.Fatalf("quest not recorded in result state")
	}
	if st.XP == 0 {
		t.Fatalf("quest XP not awarded")
	}

	dup := submit(t, s, protocol.IntentMsg{
		Type: protocol.TypeIntent, ID: "r2",
		Intent: protocol.IntentCompleteQuest, QuestID: "q1-1",
	})
	if dup.Ok || dup.Code != protocol.ErrDuplicate {
		t.Fatalf("dup: ok=%v code=%s", dup.Ok, dup.Code)
	}
}

func TestSession_RejectionCodes(t *testing.T) {
	h, _ := newTestHub(t, newMemStore())
	s, err := h.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	cases := []struct {
		name string
		msg  protocol.IntentMsg
		code string
	}{
		{"missing quest id", protocol.IntentMsg{Intent: protocol.IntentCompleteQuest}, protocol.ErrBadRequest},
		{"blank journal text", protocol.IntentMsg{Intent: protocol.IntentAddJournalEntry, Text: "   "}, protocol.ErrBadRequest},
		{"blank name", protocol.IntentMsg{Intent: protocol.IntentSetName, Name: " "}, protocol.ErrBadRequest},
		{"negative coins", protocol.IntentMsg{Intent: protocol.IntentAddCoins, Amount: -5}, protocol.ErrBadRequest},
		{"unknown shop item", protocol.IntentMsg{Intent: protocol.IntentPurchaseItem, ItemID: "bg-nope"}, protocol.ErrBadRequest},
		{"expensive item", protocol.IntentMsg{Intent: protocol.IntentPurchaseItem, ItemID: "bg-gold"}, protocol.ErrNoCoins},
		{"unowned equip", protocol.IntentMsg{Intent: protocol.IntentEquipItem, ItemID: "bg-gold"}, protocol.ErrNotOwned},
		{"unknown intent", protocol.IntentMsg{Intent: "dance"}, protocol.ErrBadRequest},
	}
	for _, tc := range cases {
		res := submit(t, s, tc.msg)
		if res.Ok {
			t.Fatalf("%s: expected rejection", tc.name)
		}
		if res.Code != tc.code {
			t.Fatalf("%s: code=%s want %s", tc.name, res.Code, tc.code)
		}
		if len(res.State) != 0 {
			t.Fatalf("%s: rejection must not carry state", tc.name)
		}
	}
}

func TestSession_GameCooldownAndLevelLock(t *testing.T) {
	h, _ := newTestHub(t, newMemStore())
	s, err := h.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	first := submit(t, s, protocol.IntentMsg{Intent: protocol.IntentCompleteGame, GameID: "game-ranked"})
	if !first.Ok {
		t.Fatalf("first play rejected: code=%s", first.Code)
	}
	again := submit(t, s, protocol.IntentMsg{Intent: protocol.IntentCompleteGame, GameID: "game-ranked"})
	if again.Ok || again.Code != protocol.ErrCooldown {
		t.Fatalf("replay: ok=%v code=%s want %s", again.Ok, again.Code, protocol.ErrCooldown)
	}
}

func TestSession_CustomEventOncePerDay(t *testing.T) {
	h, _ := newTestHub(t, newMemStore())
	s, err := h.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	first := submit(t, s, protocol.IntentMsg{
		Intent: protocol.IntentRegisterCustomEvent,
		Title:  "Gave a toast", RequestedXP: 500,
	})
	if !first.Ok {
		t.Fatalf("first event rejected: code=%s", first.Code)
	}
	second := submit(t, s, protocol.IntentMsg{
		Intent: protocol.IntentRegisterCustomEvent,
		Title:  "Another toast", RequestedXP: 10,
	})
	if second.Ok || second.Code != protocol.ErrDuplicate {
		t.Fatalf("same-day event: ok=%v code=%s", second.Ok, second.Code)
	}
}

func TestSession_SerializesConcurrentIntents(t *testing.T) {
	h, _ := newTestHub(t, newMemStore())
	s, err := h.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Submit(context.Background(), protocol.IntentMsg{
				Intent: protocol.IntentAddCoins, Amount: 1,
			}); err != nil {
				t.Errorf("submit: %v", err)
			}
		}()
	}
	wg.Wait()

	blob, err := s.StateBlob(context.Background())
	if err != nil {
		t.Fatalf("state blob: %v", err)
	}
	st := decodeState(t, blob)
	if st.Coins != 50+n {
		t.Fatalf("coins=%d want %d", st.Coins, 50+n)
	}
}

func TestSession_MutationsReachStoreThroughSaver(t *testing.T) {
	store := newMemStore()
	h, _ := newTestHub(t, store)
	s, err := h.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	submit(t, s, protocol.IntentMsg{Intent: protocol.IntentAddCoins, Amount: 10})

	deadline := time.Now().Add(2 * time.Second)
	for {
		store.mu.Lock()
		blob, ok := store.blobs["u1"]
		store.mu.Unlock()
		if ok {
			var got struct {
				Coins int `json:"coins"`
			}
			if err := json.Unmarshal(blob, &got); err != nil {
				t.Fatalf("unmarshal stored blob: %v", err)
			}
			if got.Coins == 60 {
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("debounced save never reached the store")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_Close_StopsSubmissions(t *testing.T) {
	h, _ := newTestHub(t, newMemStore())
	s, err := h.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	h.Close()

	if _, err := s.Submit(context.Background(), protocol.IntentMsg{Intent: protocol.IntentAddCoins, Amount: 1}); !errors.Is(err, ErrClosed) {
		t.Fatalf("submit after close: err=%v want ErrClosed", err)
	}
	if _, err := h.Get(context.Background(), "u2"); !errors.Is(err, ErrClosed) {
		t.Fatalf("get after close: err=%v want ErrClosed", err)
	}
}
