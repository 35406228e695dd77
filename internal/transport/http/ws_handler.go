package http

import (
	"encoding/json"
	"net/http"

	"forklift-training-service/internal/app"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSHandler drives one session's quiz over a websocket connection.
type WSHandler struct {
	service  *app.QuizService
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log *zap.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
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

type answerPayload struct {
	Option *int `json:"option"`
}

type feedbackPayload struct {
	Feedback app.Feedback  `json:"feedback"`
	State    app.QuizState `json:"state"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and answers quiz commands for sessionID.
// The attempt is started or resumed as soon as the socket opens.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	out := newOutbox(16)
	go func() {
		defer close(out.done)
		for msg := range out.send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	sendErr := func(err error) bool {
		message := err.Error()
		if statusFor(err) == http.StatusInternalServerError {
			h.log.Error("ws quiz command failed", zap.String("session", sessionID), zap.Error(err))
			message = "Internal server error"
		}
		return out.push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}})
	}
	sendState := func(state app.QuizState) bool {
		kind := "question"
		if state.Result != nil {
			kind = "complete"
		}
		return out.push(outboundMessage[any]{Type: kind, Payload: state})
	}
	reply := func(state app.QuizState, err error) bool {
		if err != nil {
			return sendErr(err)
		}
		return sendState(state)
	}

	open := reply(h.service.StartOrResume(r.Context(), sessionID))

	for open {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Option == nil {
				open = out.push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			fb, state, err := h.service.SubmitAnswer(r.Context(), sessionID, *payload.Option)
			if err != nil {
				open = sendErr(err)
				continue
			}
			open = out.push(outboundMessage[any]{Type: "feedback", Payload: feedbackPayload{Feedback: fb, State: state}})
		case "next":
			open = reply(h.service.Advance(r.Context(), sessionID))
		case "restart":
			open = reply(h.service.Restart(r.Context(), sessionID))
		case "state":
			open = reply(h.service.State(r.Context(), sessionID))
		default:
			open = out.push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(out.send)
	<-out.done
}

// outbox queues messages for the connection's writer goroutine.
type outbox struct {
	send chan outboundMessage[any]
	done chan struct{} // closed when the writer exits
}

func newOutbox(size int) *outbox {
	return &outbox{send: make(chan outboundMessage[any], size), done: make(chan struct{})}
}

// push queues msg and reports false once the writer has stopped.
func (o *outbox) push(msg outboundMessage[any]) bool {
	select {
	case o.send <- msg:
		return true
	case <-o.done:
		return false
	}
}
