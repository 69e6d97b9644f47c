// Package progress implements the progression state machine: one mutable
// record per user, mutated only through Engine intents, persisted as an
// opaque JSON blob. All transitions are all-or-nothing: rule rejections
// happen before the first field is touched.
package progress

import (
	"encoding/json"
	"fmt"
	"time"

	"oratoria.app/internal/catalog"
)

// Day is a calendar date at day granularity, rendered as the UTC date
// string YYYY-MM-DD. The empty Day means "never". One definition of day is
// applied uniformly to daily challenges and the custom-event cooldown.
type Day string

func DayOf(t time.Time) Day {
	return Day(t.UTC().Format("2006-01-02"))
}

// Skills are the four named gauges, each clamped to [1, 10] and
// non-decreasing under every intent.
type Skills struct {
	Diction    float64 `json:"diction"`
	Confidence float64 `json:"confidence"`
	Vocabulary float64 `json:"vocabulary"`
	Empathy    float64 `json:"empathy"`
}

type JournalEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
}

// EventRecord is one free-form registered event in the history.
type EventRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	XP          int    `json:"xp"`
	Date        Day    `json:"date"`
}

type Avatar struct {
	BackgroundColor string `json:"backgroundColor"`
}

// State is the whole game status of one user. JSON field names are the
// persisted contract; saved blobs are decoded by merging over defaults so
// fields introduced later always pick up their default value.
type State struct {
	Name   string  `json:"name"`
	Level  int     `json:"level"`
	XP     int     `json:"xp"`
	Coins  int     `json:"coins"`
	Streak int     `json:"streak"` // reserved, not mutated by any intent
	Skills Skills  `json:"skills"`

	QuestsCompleted map[string]bool `json:"questsCompleted"`
	EventsCompleted map[string]bool `json:"eventsCompleted"`

	LastCustomEventDate Day `json:"lastCustomEventDate,omitempty"`

	GameCooldowns  map[string]time.Time `json:"gameCooldowns"`
	JournalEntries []JournalEntry       `json:"journalEntries"`

	CompletedDailyChallenges map[string]Day `json:"completedDailyChallenges"`

	AvatarCustomizations Avatar   `json:"avatarCustomizations"`
	PurchasedItems       []string `json:"purchasedItems"`

	EventHistory      []EventRecord `json:"eventHistory"`
	UnlockedFeatures  []string      `json:"unlockedFeatures"`
	MilestonesReached []int         `json:"milestonesReached"`
}

// DefaultName is the onboarding display name before the user renames.
const DefaultName = "Traveler"

// New returns a fresh state with the fixed creation defaults.
func New() *State {
	return &State{
		Name:   DefaultName,
		Level:  1,
		XP:     0,
		Coins:  50,
		Streak: 1,
		Skills: Skills{Diction: 1, Confidence: 1, Vocabulary: 1, Empathy: 1},

		QuestsCompleted:          map[string]bool{},
		EventsCompleted:          map[string]bool{},
		GameCooldowns:            map[string]time.Time{},
		JournalEntries:           []JournalEntry{},
		CompletedDailyChallenges: map[string]Day{},
		AvatarCustomizations:     Avatar{BackgroundColor: catalog.DefaultBackgroundColor},
		PurchasedItems:           []string{catalog.DefaultItemID},
		EventHistory:             []EventRecord{},
		UnlockedFeatures:         []string{},
		MilestonesReached:        []int{},
	}
}

// Decode merges a persisted blob over the defaults: missing fields keep
// their default, unknown fields are ignored. The result is normalized so a
// blob written by any earlier schema still satisfies the state invariants.
func Decode(raw []byte) (*State, error) {
	s := New()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, s); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
	}
	s.normalize()
	return s, nil
}

// Encode renders the state as its persisted blob.
func (s *State) Encode() ([]byte, error) {
	return json.Marshal(s)
}

func (s *State) normalize() {
	if s.Name == "" {
		s.Name = DefaultName
	}
	if s.Level < 1 {
		s.Level = 1
	}
	if s.XP < 0 {
		s.XP = 0
	}
	if s.Coins < 0 {
		s.Coins = 0
	}
	if s.Streak < 1 {
		s.Streak = 1
	}
	s.Skills.Diction = clampSkill(s.Skills.Diction)
	s.Skills.Confidence = clampSkill(s.Skills.Confidence)
	s.Skills.Vocabulary = clampSkill(s.Skills.Vocabulary)
	s.Skills.Empathy = clampSkill(s.Skills.Empathy)

	if s.QuestsCompleted == nil {
		s.QuestsCompleted = map[string]bool{}
	}
	if s.EventsCompleted == nil {
		s.EventsCompleted = map[string]bool{}
	}
	if s.GameCooldowns == nil {
		s.GameCooldowns = map[string]time.Time{}
	}
	if s.JournalEntries == nil {
		s.JournalEntries = []JournalEntry{}
	}
	if s.CompletedDailyChallenges == nil {
		s.CompletedDailyChallenges = map[string]Day{}
	}
	if s.AvatarCustomizations.BackgroundColor == "" {
		s.AvatarCustomizations.BackgroundColor = catalog.DefaultBackgroundColor
	}
	if s.EventHistory == nil {
		s.EventHistory = []EventRecord{}
	}
	if s.UnlockedFeatures == nil {
		s.UnlockedFeatures = []string{}
	}
	if s.MilestonesReached == nil {
		s.MilestonesReached = []int{}
	}

	// The free default item is always owned.
	if !contains(s.PurchasedItems, catalog.DefaultItemID) {
		s.PurchasedItems = append([]string{catalog.DefaultItemID}, s.PurchasedItems...)
	}
}

func clampSkill(v float64) float64 {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, n := range list {
		if n == v {
			return true
		}
	}
	return false
}
