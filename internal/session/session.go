// Package session runs one serialized intent loop per user. All reads and
// writes of a user's progress state happen on that user's loop goroutine,
// so the engine never needs locks and intents from concurrent connections
// apply in a single total order.
package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"oratoria.app/internal/catalog"
	"oratoria.app/internal/persistence/profile"
	"oratoria.app/internal/progress"
	"oratoria.app/internal/protocol"
)

// ErrClosed is returned for submissions after the session stopped.
var ErrClosed = errors.New("session closed")

type request struct {
	msg  protocol.IntentMsg
	resp chan protocol.ResultMsg
}

// Session owns a single user's state. Create via Hub.Get; the hub loads
// the profile before the loop starts, so every accepted intent sees the
// persisted history.
type Session struct {
	userID string
	eng    *progress.Engine
	cat    *catalog.Catalog
	state  *progress.State
	saver  *profile.Saver
	log    *log.Logger
	now    func() time.Time

	inbox    chan request
	stateReq chan chan []byte
	stop     chan struct{}
	done     chan struct{}
}

func newSession(userID string, cat *catalog.Catalog, state *progress.State, saver *profile.Saver, logger *log.Logger, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		userID:   userID,
		eng:      progress.NewEngine(cat),
		cat:      cat,
		state:    state,
		saver:    saver,
		log:      logger,
		now:      now,
		inbox:    make(chan request, 16),
		stateReq: make(chan chan []byte),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Session) UserID() string { return s.userID }

func (s *Session) run() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		case ch := <-s.stateReq:
			ch <- s.encode()
		case req := <-s.inbox:
			req.resp <- s.handle(req.msg)
		}
	}
}

// Submit applies one intent on the session loop and returns its result.
func (s *Session) Submit(ctx context.Context, msg protocol.IntentMsg) (protocol.ResultMsg, error) {
	req := request{msg: msg, resp: make(chan protocol.ResultMsg, 1)}
	select {
	case s.inbox <- req:
	case <-s.stop:
		return protocol.ResultMsg{}, ErrClosed
	case <-ctx.Done():
		return protocol.ResultMsg{}, ctx.Err()
	}
	select {
	case res := <-req.resp:
		return res, nil
	case <-s.done:
		return protocol.ResultMsg{}, ErrClosed
	case <-ctx.Done():
		return protocol.ResultMsg{}, ctx.Err()
	}
}

// StateBlob returns the current encoded state, read on the loop goroutine.
func (s *Session) StateBlob(ctx context.Context) ([]byte, error) {
	ch := make(chan []byte, 1)
	select {
	case s.stateReq <- ch:
	case <-s.stop:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case blob := <-ch:
		return blob, nil
	case <-s.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Session) encode() []byte {
	blob, err := s.state.Encode()
	if err != nil {
		s.log.Printf("encode state %s: %v", s.userID, err)
		return nil
	}
	return blob
}

// handle validates and applies one intent. Rejections by rule come back
// Ok=false with a code; the state is untouched on every rejection path.
func (s *Session) handle(msg protocol.IntentMsg) protocol.ResultMsg {
	res := protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		Ref:             msg.ID,
	}

	reject := func(code, message string) protocol.ResultMsg {
		res.Ok = false
		res.Code = code
		res.Message = message
		return res
	}

	var lr progress.LevelResult

	switch msg.Intent {
	case protocol.IntentCompleteQuest:
		if msg.QuestID == "" {
			return reject(protocol.ErrBadRequest, "quest_id is required")
		}
		if s.state.QuestsCompleted[msg.QuestID] {
			return reject(protocol.ErrDuplicate, "quest already completed")
		}
		lr = s.eng.CompleteQuest(s.state, msg.QuestID)

	case protocol.IntentCompleteSpecialEvent:
		if msg.EventID == "" {
			return reject(protocol.ErrBadRequest, "event_id is required")
		}
		if s.state.EventsCompleted[msg.EventID] {
			return reject(protocol.ErrDuplicate, "event already completed")
		}
		lr = s.eng.CompleteSpecialEvent(s.state, msg.EventID)

	case protocol.IntentRegisterCustomEvent:
		if strings.TrimSpace(msg.Title) == "" {
			return reject(protocol.ErrBadRequest, "title is required")
		}
		ev := s.eng.RegisterCustomEvent(s.state, msg.Title, msg.Description, msg.RequestedXP, progress.DayOf(s.now()))
		if !ev.Success {
			return reject(protocol.ErrDuplicate, ev.Message)
		}
		res.Message = ev.Message
		lr = ev.LevelResult

	case protocol.IntentCompleteGame:
		if msg.GameID == "" {
			return reject(protocol.ErrBadRequest, "game_id is required")
		}
		xp, cooldown := msg.XPReward, msg.CooldownHours
		if g, ok := s.cat.MiniGamesByID[msg.GameID]; ok {
			xp, cooldown = g.XPReward, g.CooldownHours
		}
		gr := s.eng.CompleteGame(s.state, msg.GameID, xp, cooldown, s.now())
		if gr.Locked {
			return reject(protocol.ErrLevelLocked, "level too low for this game")
		}
		if !gr.Success {
			return reject(protocol.ErrCooldown, "game is on cooldown")
		}
		lr = gr.LevelResult

	case protocol.IntentAddJournalEntry:
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			return reject(protocol.ErrBadRequest, "text is required")
		}
		s.eng.AddJournalEntry(s.state, text, s.now())

	case protocol.IntentCompleteDailyChallenge:
		if msg.ChallengeID == "" {
			return reject(protocol.ErrBadRequest, "challenge_id is required")
		}
		today := progress.DayOf(s.now())
		if s.state.CompletedDailyChallenges[msg.ChallengeID] == today {
			return reject(protocol.ErrDuplicate, "challenge already completed today")
		}
		lr = s.eng.CompleteDailyChallenge(s.state, msg.ChallengeID, today)

	case protocol.IntentSetName:
		name := strings.TrimSpace(msg.Name)
		if name == "" {
			return reject(protocol.ErrBadRequest, "name is required")
		}
		s.eng.SetName(s.state, name)

	case protocol.IntentAddCoins:
		if !s.eng.AddCoins(s.state, msg.Amount) {
			return reject(protocol.ErrBadRequest, "amount must not be negative")
		}

	case protocol.IntentPurchaseItem:
		item, ok := s.cat.ShopItemsByID[msg.ItemID]
		if !ok {
			return reject(protocol.ErrBadRequest, "unknown item")
		}
		if owned(s.state.PurchasedItems, item.ID) {
			return reject(protocol.ErrDuplicate, "item already owned")
		}
		if !s.eng.PurchaseItem(s.state, item) {
			return reject(protocol.ErrNoCoins, "not enough coins")
		}

	case protocol.IntentEquipItem:
		item, ok := s.cat.ShopItemsByID[msg.ItemID]
		if !ok {
			return reject(protocol.ErrBadRequest, "unknown item")
		}
		if !s.eng.EquipItem(s.state, item) {
			return reject(protocol.ErrNotOwned, "item not owned")
		}

	default:
		return reject(protocol.ErrBadRequest, "unknown intent")
	}

	res.Ok = true
	res.LeveledUp = lr.LeveledUp
	res.NewLevel = lr.NewLevel

	blob := s.encode()
	res.State = blob
	if blob != nil {
		s.saver.Mark(s.userID, blob)
	}
	return res
}

func owned(items []string, id string) bool {
	for _, it := range items {
		if it == id {
			return true
		}
	}
	return false
}
