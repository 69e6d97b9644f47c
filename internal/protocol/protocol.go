package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeIntent  = "INTENT"
	TypeResult  = "RESULT"
)

// Intent names, one per engine entry point.
const (
	IntentCompleteQuest          = "complete_quest"
	IntentCompleteSpecialEvent   = "complete_special_event"
	IntentRegisterCustomEvent    = "register_custom_event"
	IntentCompleteGame           = "complete_game"
	IntentAddJournalEntry        = "add_journal_entry"
	IntentCompleteDailyChallenge = "complete_daily_challenge"
	IntentSetName                = "set_name"
	IntentAddCoins               = "add_coins"
	IntentPurchaseItem           = "purchase_item"
	IntentEquipItem              = "equip_item"
)

// KnownIntents routes and validates intent names.
var KnownIntents = map[string]struct{}{
	IntentCompleteQuest:          {},
	IntentCompleteSpecialEvent:   {},
	IntentRegisterCustomEvent:    {},
	IntentCompleteGame:           {},
	IntentAddJournalEntry:        {},
	IntentCompleteDailyChallenge: {},
	IntentSetName:                {},
	IntentAddCoins:               {},
	IntentPurchaseItem:           {},
	IntentEquipItem:              {},
}

func IsKnownIntent(name string) bool {
	_, ok := KnownIntents[name]
	return ok
}

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
