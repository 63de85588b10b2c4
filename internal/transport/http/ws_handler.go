package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler carries the two mutating operations over a websocket and streams
// the committed event log to the client, starting after the cursor it supplies.
type WSHandler struct {
	service  *app.QuizService
	feed     *app.Feed
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, feed *app.Feed) *WSHandler {
	return &WSHandler{
		service: service,
		feed:    feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Kind    domain.ErrorKind `json:"kind,omitempty"`
	Message string           `json:"message"`
}

type quizCreatedPayload struct {
	QuizID uint64 `json:"quizId"`
}

type submittedPayload struct {
	QuizID uint64 `json:"quizId"`
}

// ServeWS upgrades the connection and wires it into the engine. The signer
// query parameter (or X-Signer header) is the injected caller identity; the
// after parameter positions the event cursor.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	signer := r.URL.Query().Get("signer")
	if signer == "" {
		signer = r.Header.Get("X-Signer")
	}

	after := uint64(0)
	if raw := r.URL.Query().Get("after"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid after cursor", http.StatusBadRequest)
			return
		}
		after = parsed
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := h.feed.Subscribe(r.Context(), after)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "event", Payload: event}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "createQuiz":
			var params domain.CreateQuizParams
			if err := json.Unmarshal(inbound.Payload, &params); err != nil {
				send <- errorMessage(domain.ErrInvalidInput("invalid createQuiz payload"))
				continue
			}
			quizID, err := h.service.CreateQuiz(r.Context(), params, app.Caller{Signer: signer})
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			send <- outboundMessage[any]{Type: "quizCreated", Payload: quizCreatedPayload{QuizID: quizID}}
		case "submitAnswers":
			var params domain.SubmitAnswersParams
			if err := json.Unmarshal(inbound.Payload, &params); err != nil {
				send <- errorMessage(domain.ErrInvalidAnswerFormat("invalid submitAnswers payload"))
				continue
			}
			if err := h.service.SubmitAnswers(r.Context(), params); err != nil {
				send <- errorMessage(err)
				continue
			}
			send <- outboundMessage[any]{Type: "submitted", Payload: submittedPayload{QuizID: params.QuizID}}
		default:
			send <- errorMessage(domain.ErrInvalidInput("unsupported message type"))
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

func errorMessage(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{
		Kind:    domain.KindOf(err),
		Message: err.Error(),
	}}
}
