// Command client is a small websocket client for poking a running server:
// it performs the handshake, prints the profile summary from WELCOME and
// optionally submits one intent.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gorilla/websocket"

	"oratoria.app/internal/protocol"
)

func main() {
	var (
		url    = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		user   = flag.String("user", "", "user id (required)")
		intent = flag.String("intent", "", "intent to submit after the handshake (empty: handshake only)")

		questID     = flag.String("quest", "", "quest id")
		eventID     = flag.String("event", "", "special event id")
		challengeID = flag.String("challenge", "", "daily challenge id")
		gameID      = flag.String("game", "", "mini-game id")
		itemID      = flag.String("item", "", "shop item id")
		title       = flag.String("title", "", "custom event title")
		text        = flag.String("text", "", "journal entry text")
		name        = flag.String("name", "", "display name")
		xp          = flag.Int("xp", 0, "requested xp for a custom event")
		amount      = flag.Int("amount", 0, "coin amount")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[client] ", log.LstdFlags|log.Lmicroseconds)
	if *user == "" {
		logger.Fatalf("-user is required")
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		UserID:          *user,
		ClientName:      "client-cli",
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	var welcome protocol.WelcomeMsg
	if err := conn.ReadJSON(&welcome); err != nil {
		logger.Fatalf("read WELCOME: %v", err)
	}
	printState(logger, welcome.State)

	if *intent == "" {
		return
	}
	if !protocol.IsKnownIntent(*intent) {
		logger.Fatalf("unknown intent %q", *intent)
	}

	msg := protocol.IntentMsg{
		Type:            protocol.TypeIntent,
		ProtocolVersion: protocol.Version,
		ID:              "cli-1",
		Intent:          *intent,
		QuestID:         *questID,
		EventID:         *eventID,
		ChallengeID:     *challengeID,
		GameID:          *gameID,
		ItemID:          *itemID,
		Title:           *title,
		Text:            *text,
		Name:            *name,
		RequestedXP:     *xp,
		Amount:          *amount,
	}
	if err := conn.WriteJSON(msg); err != nil {
		logger.Fatalf("send INTENT: %v", err)
	}

	var res protocol.ResultMsg
	if err := conn.ReadJSON(&res); err != nil {
		logger.Fatalf("read RESULT: %v", err)
	}
	if !res.Ok {
		logger.Printf("rejected: code=%s message=%q", res.Code, res.Message)
		return
	}
	if res.LeveledUp {
		logger.Printf("level up! now level %d", res.NewLevel)
	}
	if res.Message != "" {
		logger.Printf("message: %s", res.Message)
	}
	printState(logger, res.State)
}

func printState(logger *log.Logger, raw json.RawMessage) {
	var s struct {
		Name   string `json:"name"`
		Level  int    `json:"level"`
		XP     int    `json:"xp"`
		Coins  int    `json:"coins"`
		Streak int    `json:"streak"`
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		logger.Printf("state: %s", string(raw))
		return
	}
	fmt.Printf("%s: level=%d xp=%d coins=%d streak=%d\n", s.Name, s.Level, s.XP, s.Coins, s.Streak)
}
