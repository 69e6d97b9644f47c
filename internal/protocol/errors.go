package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Session/profile state.
	ErrNotLoaded = "E_NOT_LOADED"

	// Rule rejections: expected outcomes the client renders as feedback.
	ErrBadRequest  = "E_BAD_REQUEST"
	ErrDuplicate   = "E_DUPLICATE"
	ErrCooldown    = "E_COOLDOWN"
	ErrNoCoins     = "E_NO_COINS"
	ErrNotOwned    = "E_NOT_OWNED"
	ErrLevelLocked = "E_LEVEL_LOCKED"

	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrNotLoaded:       {},
	ErrBadRequest:      {},
	ErrDuplicate:       {},
	ErrCooldown:        {},
	ErrNoCoins:         {},
	ErrNotOwned:        {},
	ErrLevelLocked:     {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
