// Package ws is the websocket front door: one connection speaks HELLO,
// receives WELCOME with the loaded profile, then streams INTENT/RESULT
// pairs against the user's session.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"oratoria.app/internal/catalog"
	"oratoria.app/internal/protocol"
	"oratoria.app/internal/session"
)

type Server struct {
	hub *session.Hub
	cat *catalog.Catalog
	log *log.Logger

	readTimeout  time.Duration
	writeTimeout time.Duration

	upgrader websocket.Upgrader
}

func NewServer(hub *session.Hub, cat *catalog.Catalog, logger *log.Logger, readTimeout, writeTimeout time.Duration) *Server {
	return &Server{
		hub:          hub,
		cat:          cat,
		log:          logger,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess, out := s.handshake(r.Context(), conn)
		if sess == nil {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeIntent {
				continue
			}
			var intent protocol.IntentMsg
			if err := json.Unmarshal(msg, &intent); err != nil {
				continue
			}
			if intent.ProtocolVersion != protocol.Version {
				s.send(ctx, out, rejectMsg(intent.ID, protocol.ErrProtoBadRequest, "bad protocol_version"))
				continue
			}
			if !protocol.IsKnownIntent(intent.Intent) {
				s.send(ctx, out, rejectMsg(intent.ID, protocol.ErrProtoBadRequest, "unknown intent"))
				continue
			}

			res, err := sess.Submit(ctx, intent)
			if err != nil {
				cancel()
				return
			}
			s.send(ctx, out, res)
		}
	}
}

// handshake reads HELLO, loads the profile through the hub and sends
// WELCOME. No intent is read before the WELCOME went out, so a client can
// never act against a profile that did not finish loading.
func (s *Server) handshake(ctx context.Context, conn *websocket.Conn) (*session.Session, chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		s.closeWith(conn, "expected HELLO")
		return nil, nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		s.closeWith(conn, "malformed HELLO")
		return nil, nil
	}
	if hello.ProtocolVersion != protocol.Version {
		s.closeWith(conn, "bad protocol_version")
		return nil, nil
	}
	if hello.UserID == "" {
		s.closeWith(conn, "user_id is required")
		return nil, nil
	}

	sess, err := s.hub.Get(ctx, hello.UserID)
	if err != nil {
		s.log.Printf("handshake %s: %v", hello.UserID, err)
		s.closeWith(conn, "profile unavailable")
		return nil, nil
	}
	state, err := sess.StateBlob(ctx)
	if err != nil {
		s.closeWith(conn, "profile unavailable")
		return nil, nil
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		UserID:          hello.UserID,
		Catalogs:        digests(s.cat),
		State:           state,
	}
	b, err := json.Marshal(welcome)
	if err != nil {
		return nil, nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return nil, nil
	}

	return sess, make(chan []byte, 16)
}

func (s *Server) send(ctx context.Context, out chan []byte, res protocol.ResultMsg) {
	b, err := json.Marshal(res)
	if err != nil {
		s.log.Printf("marshal result: %v", err)
		return
	}
	select {
	case out <- b:
	case <-ctx.Done():
	}
}

func (s *Server) closeWith(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
		time.Now().Add(time.Second))
}

func rejectMsg(ref, code, message string) protocol.ResultMsg {
	return protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		Ref:             ref,
		Ok:              false,
		Code:            code,
		Message:         message,
	}
}

func digests(c *catalog.Catalog) protocol.CatalogDigests {
	return protocol.CatalogDigests{
		Levels:          c.Digests.Levels,
		Quests:          c.Digests.Quests,
		Milestones:      c.Digests.Milestones,
		DailyChallenges: c.Digests.DailyChallenges,
		MiniGames:       c.Digests.MiniGames,
		ShopItems:       c.Digests.ShopItems,
		SpecialEvents:   c.Digests.SpecialEvents,
	}
}
