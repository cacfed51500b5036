package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"sat-practice-service/internal/app"
	"sat-practice-service/internal/domain"
)

// WSHandler runs practice rounds over a websocket for an authenticated session.
type WSHandler struct {
	practice *app.PracticeService
	sessions app.SessionRepository
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

func NewWSHandler(practice *app.PracticeService, sessions app.SessionRepository, log logrus.FieldLogger) *WSHandler {
	return &WSHandler{
		practice: practice,
		sessions: sessions,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Topic string `json:"topic"`
}

type submitPayload struct {
	Answers map[string]string `json:"answers"`
}

type questionsPayload struct {
	Topic     string            `json:"topic,omitempty"`
	Questions []domain.Question `json:"questions"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

const sessionEndedMessage = "Session ended. Log in again."

// ServeWS upgrades the request and answers select, test and submit messages
// until the client disconnects or its session ends. Messages are handled one at a time.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request, session *domain.Session) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.WithField("account", session.AccountID)
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("ws read error")
			}
			return
		}
		reply := h.handle(r, session, inbound)
		if err := conn.WriteJSON(reply); err != nil {
			log.WithError(err).Warn("ws write error")
			return
		}
		if isSessionEnded(reply) {
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session ended"))
			return
		}
	}
}

func (h *WSHandler) handle(r *http.Request, session *domain.Session, inbound inboundMessage) outboundMessage[any] {
	ctx := r.Context()
	switch inbound.Type {
	case "select":
		var payload selectPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				return wsError("invalid select payload")
			}
		}
		questions, err := h.practice.Select(ctx, payload.Topic)
		if err != nil {
			return h.wsFailure(err)
		}
		return outboundMessage[any]{Type: "questions", Payload: questionsPayload{Topic: payload.Topic, Questions: questions}}
	case "test":
		questions, err := h.practice.FullTest(ctx)
		if err != nil {
			return h.wsFailure(err)
		}
		return outboundMessage[any]{Type: "questions", Payload: questionsPayload{Questions: questions}}
	case "submit":
		var payload submitPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return wsError("invalid submit payload")
		}
		// The session may have been logged out or expired since the upgrade.
		if _, err := h.sessions.Get(ctx, session.Token); err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return wsError(sessionEndedMessage)
			}
			return h.wsFailure(err)
		}
		if payload.Answers == nil {
			payload.Answers = map[string]string{}
		}
		result, err := h.practice.Submit(ctx, session.AccountID, payload.Answers)
		if err != nil {
			return h.wsFailure(err)
		}
		return outboundMessage[any]{Type: "result", Payload: result}
	default:
		return wsError("unsupported message type")
	}
}

func (h *WSHandler) wsFailure(err error) outboundMessage[any] {
	if _, msg, ok := userError(err); ok {
		return wsError(msg)
	}
	h.log.WithError(err).Error("ws request failed")
	return wsError("internal error")
}

func isSessionEnded(msg outboundMessage[any]) bool {
	payload, ok := msg.Payload.(errorPayload)
	return ok && payload.Message == sessionEndedMessage
}

func wsError(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
