package progress

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"oratoria.app/internal/catalog"
)

// Intent rule constants.
const (
	// CoinsPerLevel is awarded for every level gained.
	CoinsPerLevel = 25

	// DailyChallengeXP is the flat award per daily challenge completion.
	// The catalog carries per-challenge values but they are informational;
	// the award is flat.
	DailyChallengeXP = 5

	// customEventXPCapPct caps a self-reported event at this share of the
	// current level threshold.
	customEventXPCapPct = 75
)

// Engine applies intents to a State against a fixed catalog. Methods
// mutate the state in place; every rejection path returns before the first
// mutation, so a rejected intent leaves the state untouched. Callers must
// serialize intents per user (see the session package).
type Engine struct {
	cat *catalog.Catalog
}

func NewEngine(cat *catalog.Catalog) *Engine {
	return &Engine{cat: cat}
}

// LevelResult reports whether an intent crossed a level boundary.
// NewLevel is the final level reached, zero when no level-up occurred.
type LevelResult struct {
	LeveledUp bool
	NewLevel  int
}

// EventResult is the outcome of RegisterCustomEvent.
type EventResult struct {
	Success bool
	Message string
	LevelResult
}

// GameResult is the outcome of CompleteGame. Locked distinguishes a
// minimum-level rejection from a running cooldown.
type GameResult struct {
	Success bool
	Locked  bool
	LevelResult
}

// AwardXP adds XP and processes level-ups: while the accumulated XP meets
// the current threshold, the threshold is subtracted and the level
// incremented, so one call can cross several levels. Each level entered
// grants its milestone at most once. Coins increase by CoinsPerLevel per
// level gained. Zero or negative amounts change nothing.
func (e *Engine) AwardXP(s *State, amount int) LevelResult {
	if amount <= 0 {
		return LevelResult{}
	}

	before := s.Level
	s.XP += amount
	for {
		req, ok := catalog.XPRequired(s.Level)
		if !ok || s.XP < req {
			// Beyond the level table the threshold is infinite.
			break
		}
		s.XP -= req
		s.Level++
		e.grantMilestone(s, s.Level)
	}

	if s.Level == before {
		return LevelResult{}
	}
	s.Coins += CoinsPerLevel * (s.Level - before)
	return LevelResult{LeveledUp: true, NewLevel: s.Level}
}

// grantMilestone applies the milestone for a just-reached level, if the
// catalog defines one and it was not granted before. Idempotent across
// save/reload replays via milestonesReached.
func (e *Engine) grantMilestone(s *State, level int) {
	m, ok := e.cat.MilestonesByLevel[level]
	if !ok || containsInt(s.MilestonesReached, level) {
		return
	}
	s.MilestonesReached = append(s.MilestonesReached, level)
	for _, f := range m.Unlocks {
		if !contains(s.UnlockedFeatures, f) {
			s.UnlockedFeatures = append(s.UnlockedFeatures, f)
		}
	}
}

// CompleteQuest marks a quest completed, bumps the skill gauges for its
// type and awards its catalog XP. Completing the same quest twice is a
// no-op. An unknown quest id still records completion (catalog lookup
// failure is not fatal) but has no skill bump and no XP to award.
func (e *Engine) CompleteQuest(s *State, questID string) LevelResult {
	if s.QuestsCompleted[questID] {
		return LevelResult{}
	}

	xp := 0
	if q, ok := e.cat.QuestsByID[questID]; ok {
		switch q.Type {
		case catalog.QuestPhysical:
			s.Skills.Diction = clampSkill(s.Skills.Diction + 0.1)
		case catalog.QuestInterpersonal:
			s.Skills.Confidence = clampSkill(s.Skills.Confidence + 0.1)
			s.Skills.Empathy = clampSkill(s.Skills.Empathy + 0.05)
		case catalog.QuestReflective:
			s.Skills.Vocabulary = clampSkill(s.Skills.Vocabulary + 0.1)
		}
		xp = q.XP
	}

	s.QuestsCompleted[questID] = true
	return e.AwardXP(s, xp)
}

// CompleteSpecialEvent handles the legacy catalog special events. Each is
// completable once; completion bumps confidence and awards the event's
// catalog XP.
func (e *Engine) CompleteSpecialEvent(s *State, eventID string) LevelResult {
	if s.EventsCompleted[eventID] {
		return LevelResult{}
	}

	xp := 0
	if ev, ok := e.cat.SpecialEventsByID[eventID]; ok {
		s.Skills.Confidence = clampSkill(s.Skills.Confidence + 0.5)
		xp = ev.XP
	}

	s.EventsCompleted[eventID] = true
	return e.AwardXP(s, xp)
}

// RegisterCustomEvent records a free-form "rare event": at most one per
// calendar day, with the granted XP capped at 75% of the current level
// threshold regardless of what was requested.
func (e *Engine) RegisterCustomEvent(s *State, title, description string, requestedXP int, today Day) EventResult {
	if s.LastCustomEventDate == today {
		return EventResult{Message: "You already registered a rare event today."}
	}

	req, ok := catalog.XPRequired(s.Level)
	if !ok {
		req, _ = catalog.XPRequired(1)
	}
	finalXP := req * customEventXPCapPct / 100
	if requestedXP < finalXP {
		finalXP = requestedXP
	}
	if finalXP < 0 {
		finalXP = 0
	}

	record := EventRecord{
		ID:          "custom-" + uuid.NewString(),
		Title:       title,
		Description: description,
		XP:          finalXP,
		Date:        today,
	}
	s.EventHistory = append([]EventRecord{record}, s.EventHistory...)
	s.LastCustomEventDate = today
	s.Skills.Confidence = clampSkill(s.Skills.Confidence + 0.3)
	s.Skills.Diction = clampSkill(s.Skills.Diction + 0.2)

	lr := e.AwardXP(s, finalXP)
	return EventResult{
		Success:     true,
		Message:     fmt.Sprintf("Event registered! +%d XP", finalXP),
		LevelResult: lr,
	}
}

// CompleteGame records a mini-game play: rejected while the per-game
// cooldown is still running (accepted exactly at the threshold) or while
// the user is below the game's catalog minimum level. A zero xpReward is
// legal; the play still records the cooldown and skill bump.
func (e *Engine) CompleteGame(s *State, gameID string, xpReward, cooldownHours int, now time.Time) GameResult {
	if g, ok := e.cat.MiniGamesByID[gameID]; ok && s.Level < g.MinLevel {
		return GameResult{Locked: true}
	}
	if last, ok := s.GameCooldowns[gameID]; ok {
		if now.Sub(last) < time.Duration(cooldownHours)*time.Hour {
			return GameResult{}
		}
	}

	s.GameCooldowns[gameID] = now.UTC()
	s.Skills.Diction = clampSkill(s.Skills.Diction + 0.05)
	return GameResult{Success: true, LevelResult: e.AwardXP(s, xpReward)}
}

// AddJournalEntry prepends an entry and bumps vocabulary. Text is assumed
// pre-validated (non-empty after trimming) by the caller.
func (e *Engine) AddJournalEntry(s *State, text string, now time.Time) {
	s.JournalEntries = append([]JournalEntry{{Timestamp: now.UTC(), Text: text}}, s.JournalEntries...)
	s.Skills.Vocabulary = clampSkill(s.Skills.Vocabulary + 0.05)
}

// CompleteDailyChallenge awards the flat daily XP once per challenge per
// calendar day; the second same-day completion is a no-op.
func (e *Engine) CompleteDailyChallenge(s *State, challengeID string, today Day) LevelResult {
	if s.CompletedDailyChallenges[challengeID] == today {
		return LevelResult{}
	}
	s.CompletedDailyChallenges[challengeID] = today
	return e.AwardXP(s, DailyChallengeXP)
}

// SetName replaces the display name. Validation (minimum length) is the
// caller's job.
func (e *Engine) SetName(s *State, name string) {
	s.Name = name
}

// AddCoins grants coins directly. Negative amounts are rejected; coins
// never decrease outside of purchases.
func (e *Engine) AddCoins(s *State, amount int) bool {
	if amount < 0 {
		return false
	}
	s.Coins += amount
	return true
}

// PurchaseItem deducts the item cost and records ownership. Rejected when
// the item is already owned or coins are insufficient.
func (e *Engine) PurchaseItem(s *State, item catalog.ShopItem) bool {
	if contains(s.PurchasedItems, item.ID) || s.Coins < item.Cost {
		return false
	}
	s.Coins -= item.Cost
	s.PurchasedItems = append(s.PurchasedItems, item.ID)
	return true
}

// EquipItem applies an owned cosmetic to its customization slot. Equipping
// an item that was never purchased is rejected.
func (e *Engine) EquipItem(s *State, item catalog.ShopItem) bool {
	if !contains(s.PurchasedItems, item.ID) {
		return false
	}
	switch item.Kind {
	case "background":
		s.AvatarCustomizations.BackgroundColor = item.Value
	default:
		return false
	}
	return true
}
