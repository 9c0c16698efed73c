package wsocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"wallpaper_studio_go_backend/internal/services"
	"wallpaper_studio_go_backend/internal/utils/broker"

	"github.com/gorilla/websocket"
)

// Handler streams generation session status over a websocket so the
// frontend does not have to poll the REST endpoint.
type Handler struct {
	generationService *services.GenerationService
	events            *broker.Broker
	upgrader          websocket.Upgrader
	statusInterval    time.Duration
}

type Message struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	SessionID string `json:"sessionId"`
}

func NewHandler(generationService *services.GenerationService, events *broker.Broker, upgrader websocket.Upgrader, statusInterval time.Duration) *Handler {
	return &Handler{
		generationService: generationService,
		events:            events,
		upgrader:          upgrader,
		statusInterval:    statusInterval,
	}
}

func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request, userID string) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "No sessionId provided", http.StatusBadRequest)
		return
	}

	info, err := h.generationService.GetSession(sessionID)
	if err != nil {
		if errors.Is(err, services.ErrGenerationSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
		} else {
			http.Error(w, "Failed to load session", http.StatusInternalServerError)
		}
		return
	}
	if info.UserID != userID {
		http.Error(w, "Session belongs to another user", http.StatusForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading connection: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates := h.events.Subscribe(services.GenerationTopic(sessionID))
	defer h.events.Unsubscribe(services.GenerationTopic(sessionID), updates)

	ticker := time.NewTicker(h.statusInterval)
	defer ticker.Stop()

	// Push the current snapshot right away so the client does not wait for
	// the first tick.
	if err := h.writeStatus(conn, sessionID, info); err != nil {
		return
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-updates:
				if !ok {
					return
				}
				update, ok := msg.(services.GenerationSessionInfo)
				if !ok {
					continue
				}
				if err := h.writeStatus(conn, sessionID, update); err != nil {
					return
				}
			case <-ticker.C:
				snapshot, err := h.generationService.GetSession(sessionID)
				if err != nil {
					log.Printf("Error getting session status: %v", err)
					continue
				}
				if err := h.writeStatus(conn, sessionID, snapshot); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		switch msg.Type {
		case "cancel":
			if err := h.generationService.CancelGeneration(sessionID); err != nil {
				h.writeError(conn, sessionID, "Failed to cancel generation")
			}
		case "reset":
			if err := h.generationService.ResetSession(sessionID); err != nil {
				h.writeError(conn, sessionID, "Failed to reset session")
			}
		case "get_session_status":
			snapshot, err := h.generationService.GetSession(sessionID)
			if err != nil {
				h.writeError(conn, sessionID, "Failed to load session")
				continue
			}
			if err := h.writeStatus(conn, sessionID, snapshot); err != nil {
				return
			}
		default:
			log.Printf("Unknown message type: %s", msg.Type)
		}
	}
}

func (h *Handler) writeStatus(conn *websocket.Conn, sessionID string, info services.GenerationSessionInfo) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return conn.WriteJSON(Message{
		Type:      "session_status",
		Content:   string(payload),
		SessionID: sessionID,
	})
}

func (h *Handler) writeError(conn *websocket.Conn, sessionID, content string) {
	if err := conn.WriteJSON(Message{
		Type:      "error",
		Content:   content,
		SessionID: sessionID,
	}); err != nil {
		log.Printf("Error sending websocket error message: %v", err)
	}
}
