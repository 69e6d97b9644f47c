// Package catalog holds the static progression reference tables: levels,
// quests, milestones, daily challenges, mini-games, shop items and the
// legacy special events. Tables are pure data (ids, numbers, strings);
// anything visual lives in the client.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// MaxLevel is the highest level defined by the level table. XPRequired
// reports false beyond it, which halts further level-ups.
const MaxLevel = 100

// XPRequired returns the XP threshold to leave the given level. It is a
// pure function of the level so any component can recompute it:
// 100 + 50*(n-1) for n in 1..MaxLevel.
func XPRequired(level int) (int, bool) {
	if level < 1 || level > MaxLevel {
		return 0, false
	}
	return 100 + 50*(level-1), true
}

type QuestType string

const (
	QuestPhysical      QuestType = "physical"
	QuestInterpersonal QuestType = "interpersonal"
	QuestReflective    QuestType = "reflective"
)

func (t QuestType) IsValid() bool {
	switch t {
	case QuestPhysical, QuestInterpersonal, QuestReflective:
		return true
	}
	return false
}

type Level struct {
	Level      int    `json:"level"`
	XPRequired int    `json:"xp_required"`
	Title      string `json:"title"`
}

type Quest struct {
	ID          string    `json:"id"`
	Level       int       `json:"level"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        QuestType `json:"type"`
	XP          int       `json:"xp,omitempty"` // assigned at build time, see assignQuestXP
}

type Milestone struct {
	Level   int      `json:"level"`
	Title   string   `json:"title"`
	Rewards []string `json:"rewards"`
	Unlocks []string `json:"unlocks"`
}

type DailyChallenge struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	XP          int    `json:"xp"`
}

type MiniGame struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	MinLevel      int    `json:"min_level"`
	XPReward      int    `json:"xp_reward"`
	CooldownHours int    `json:"cooldown_hours"`
}

type ShopItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Cost  int    `json:"cost"`
	Kind  string `json:"kind"` // currently only "background"
	Value string `json:"value"`
}

type SpecialEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	XP          int    `json:"xp"`
}

type Catalog struct {
	Levels []Level // Levels[i] describes level i+1.

	Quests          []Quest
	Milestones      []Milestone
	DailyChallenges []DailyChallenge
	MiniGames       []MiniGame
	ShopItems       []ShopItem
	SpecialEvents   []SpecialEvent

	QuestsByID          map[string]Quest
	MilestonesByLevel   map[int]Milestone
	DailyChallengesByID map[string]DailyChallenge
	MiniGamesByID       map[string]MiniGame
	ShopItemsByID       map[string]ShopItem
	SpecialEventsByID   map[string]SpecialEvent

	Digests Digests
}

// Digests identify the effective tables so clients can cache them.
type Digests struct {
	Levels          string `json:"levels"`
	Quests          string `json:"quests"`
	Milestones      string `json:"milestones"`
	DailyChallenges string `json:"daily_challenges"`
	MiniGames       string `json:"mini_games"`
	ShopItems       string `json:"shop_items"`
	SpecialEvents   string `json:"special_events"`
}

// Build constructs the catalog from the built-in tables.
func Build() (*Catalog, error) {
	return build(defaultQuests(), defaultMilestones(), defaultDailyChallenges(),
		defaultMiniGames(), defaultShopItems(), defaultSpecialEvents())
}

// Load builds the catalog, replacing any table for which an override file
// exists under configDir. Missing files (or a missing directory) fall back
// to the built-in tables.
func Load(configDir string) (*Catalog, error) {
	quests := defaultQuests()
	milestones := defaultMilestones()
	dailies := defaultDailyChallenges()
	games := defaultMiniGames()
	shop := defaultShopItems()
	events := defaultSpecialEvents()

	if err := loadOverride(configDir, "quests.json", &quests); err != nil {
		return nil, err
	}
	if err := loadOverride(configDir, "milestones.json", &milestones); err != nil {
		return nil, err
	}
	if err := loadOverride(configDir, "daily_challenges.json", &dailies); err != nil {
		return nil, err
	}
	if err := loadOverride(configDir, "mini_games.json", &games); err != nil {
		return nil, err
	}
	if err := loadOverride(configDir, "shop_items.json", &shop); err != nil {
		return nil, err
	}
	if err := loadOverride(configDir, "special_events.json", &events); err != nil {
		return nil, err
	}

	return build(quests, milestones, dailies, games, shop, events)
}

func loadOverride[T any](dir, name string, out *[]T) error {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var defs []T
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*out = defs
	return nil
}

func build(quests []Quest, milestones []Milestone, dailies []DailyChallenge,
	games []MiniGame, shop []ShopItem, events []SpecialEvent) (*Catalog, error) {

	c := &Catalog{
		Quests:          quests,
		Milestones:      milestones,
		DailyChallenges: dailies,
		MiniGames:       games,
		ShopItems:       shop,
		SpecialEvents:   events,
	}

	c.Levels = buildLevels(milestones)

	if err := assignQuestXP(c.Quests); err != nil {
		return nil, err
	}

	c.QuestsByID = map[string]Quest{}
	for _, q := range c.Quests {
		if q.ID == "" {
			return nil, fmt.Errorf("quest with empty id")
		}
		if !q.Type.IsValid() {
			return nil, fmt.Errorf("quest %s: invalid type %q", q.ID, q.Type)
		}
		if _, dup := c.QuestsByID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate quest id %s", q.ID)
		}
		c.QuestsByID[q.ID] = q
	}

	c.MilestonesByLevel = map[int]Milestone{}
	for _, m := range c.Milestones {
		if m.Level < 1 || m.Level > MaxLevel {
			return nil, fmt.Errorf("milestone at level %d outside level table", m.Level)
		}
		if _, dup := c.MilestonesByLevel[m.Level]; dup {
			return nil, fmt.Errorf("duplicate milestone at level %d", m.Level)
		}
		c.MilestonesByLevel[m.Level] = m
	}

	c.DailyChallengesByID = map[string]DailyChallenge{}
	for _, d := range c.DailyChallenges {
		if d.ID == "" {
			return nil, fmt.Errorf("daily challenge with empty id")
		}
		c.DailyChallengesByID[d.ID] = d
	}

	c.MiniGamesByID = map[string]MiniGame{}
	for _, g := range c.MiniGames {
		if g.ID == "" {
			return nil, fmt.Errorf("mini-game with empty id")
		}
		c.MiniGamesByID[g.ID] = g
	}

	c.ShopItemsByID = map[string]ShopItem{}
	for _, it := range c.ShopItems {
		if it.ID == "" {
			return nil, fmt.Errorf("shop item with empty id")
		}
		c.ShopItemsByID[it.ID] = it
	}

	c.SpecialEventsByID = map[string]SpecialEvent{}
	for _, ev := range c.SpecialEvents {
		if ev.ID == "" {
			return nil, fmt.Errorf("special event with empty id")
		}
		c.SpecialEventsByID[ev.ID] = ev
	}

	c.Digests = Digests{
		Levels:          digestOf(c.Levels),
		Quests:          digestOf(c.Quests),
		Milestones:      digestOf(c.Milestones),
		DailyChallenges: digestOf(c.DailyChallenges),
		MiniGames:       digestOf(c.MiniGames),
		ShopItems:       digestOf(c.ShopItems),
		SpecialEvents:   digestOf(c.SpecialEvents),
	}
	return c, nil
}

func buildLevels(milestones []Milestone) []Level {
	byLevel := map[int]Milestone{}
	for _, m := range milestones {
		byLevel[m.Level] = m
	}

	levels := make([]Level, 0, MaxLevel)
	for n := 1; n <= MaxLevel; n++ {
		req, _ := XPRequired(n)
		levels = append(levels, Level{Level: n, XPRequired: req, Title: levelTitle(n, byLevel)})
	}
	return levels
}

func levelTitle(n int, milestones map[int]Milestone) string {
	if m, ok := milestones[n]; ok {
		return m.Title
	}
	switch {
	case n > 30:
		return fmt.Sprintf("Veteran Lv. %d", n)
	case n > 25:
		return fmt.Sprintf("Connector Lv. %d", n)
	case n > 20:
		return fmt.Sprintf("Professional Lv. %d", n)
	case n > 15:
		return fmt.Sprintf("Strategist Lv. %d", n)
	case n > 10:
		return fmt.Sprintf("Orator Lv. %d", n)
	case n > 5:
		return fmt.Sprintf("Practitioner Lv. %d", n)
	default:
		return fmt.Sprintf("Beginner Lv. %d", n)
	}
}

// assignQuestXP splits 70% of each level's XPRequired evenly among that
// level's quests, in input order, handing the integer remainder to the
// first quests one extra unit each. The split is deterministic given a
// fixed input order; it drives balance and is covered by tests.
func assignQuestXP(quests []Quest) error {
	byLevel := map[int][]int{} // level -> indexes into quests, input order
	for i, q := range quests {
		if _, ok := XPRequired(q.Level); !ok {
			return fmt.Errorf("quest %s: level %d outside level table", q.ID, q.Level)
		}
		byLevel[q.Level] = append(byLevel[q.Level], i)
	}

	for level, idxs := range byLevel {
		req, _ := XPRequired(level)
		total := req * 70 / 100
		per := total / len(idxs)
		rem := total % len(idxs)
		for pos, i := range idxs {
			xp := per
			if pos < rem {
				xp++
			}
			quests[i].XP = xp
		}
	}
	return nil
}

func digestOf(v any) string {
	b, _ := json.Marshal(v)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
