package protocol

import "encoding/json"

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	UserID          string `json:"user_id"`
	ClientName      string `json:"client_name,omitempty"`
}

// WELCOME (server -> client): sent once after a successful handshake, when
// the profile has finished loading. Until then no intent is accepted, so a
// client cannot clobber not-yet-loaded data.
type WelcomeMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	UserID          string          `json:"user_id"`
	Catalogs        CatalogDigests  `json:"catalogs"`
	State           json.RawMessage `json:"state"`
}

// CatalogDigests identify the server's effective reference tables.
type CatalogDigests struct {
	Levels          string `json:"levels"`
	Quests          string `json:"quests"`
	Milestones      string `json:"milestones"`
	DailyChallenges string `json:"daily_challenges"`
	MiniGames       string `json:"mini_games"`
	ShopItems       string `json:"shop_items"`
	SpecialEvents   string `json:"special_events"`
}

// INTENT (client -> server): one user action. Fields beyond ID and Intent
// are per-intent arguments; unused ones stay empty.
type IntentMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"` // client ref echoed in the RESULT
	Intent          string `json:"intent"`

	QuestID     string `json:"quest_id,omitempty"`
	EventID     string `json:"event_id,omitempty"`
	ChallengeID string `json:"challenge_id,omitempty"`
	GameID      string `json:"game_id,omitempty"`
	ItemID      string `json:"item_id,omitempty"`

	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Text        string `json:"text,omitempty"`
	Name        string `json:"name,omitempty"`

	RequestedXP   int `json:"requested_xp,omitempty"`
	XPReward      int `json:"xp_reward,omitempty"`
	CooldownHours int `json:"cooldown_hours,omitempty"`
	Amount        int `json:"amount,omitempty"`
}

// RESULT (server -> client): the outcome of one intent. Rejections by rule
// carry Ok=false plus a code and are not transport errors. State is the
// full post-intent state when the intent mutated anything.
type ResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Ref             string `json:"ref"`
	Ok              bool   `json:"ok"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`

	LeveledUp bool `json:"leveled_up,omitempty"`
	NewLevel  int  `json:"new_level,omitempty"`

	State json.RawMessage `json:"state,omitempty"`
}
