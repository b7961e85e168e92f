package http

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"adaptive-eval-service/internal/domain"
)

// FeedHub fans persisted recommendations out to connected students. It
// implements app.RecommendationNotifier; NotifyRecommendation never blocks on
// slow clients, dropping their stale updates instead.
type FeedHub struct {
	mu   sync.RWMutex
	subs map[string]map[chan domain.Recommendation]struct{}
}

func NewFeedHub() *FeedHub {
	return &FeedHub{subs: make(map[string]map[chan domain.Recommendation]struct{})}
}

// NotifyRecommendation delivers a freshly-persisted recommendation to every
// subscriber of its student.
func (h *FeedHub) NotifyRecommendation(rec domain.Recommendation) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[rec.StudentID] {
		select {
		case ch <- rec:
			continue
		default:
		}
		// Full buffer: drop the subscriber's oldest update and retry once.
		// The retry is non-blocking too, a concurrent notifier may have
		// refilled the slot.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- rec:
		default:
		}
	}
}

// Subscribe registers a feed channel for the student. The caller must invoke
// the returned cancel function to avoid leaks.
func (h *FeedHub) Subscribe(studentID string) (<-chan domain.Recommendation, func()) {
	ch := make(chan domain.Recommendation, 8)

	h.mu.Lock()
	if h.subs[studentID] == nil {
		h.subs[studentID] = make(map[chan domain.Recommendation]struct{})
	}
	h.subs[studentID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[studentID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, studentID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

type feedMessage struct {
	Type    string                `json:"type"`
	Payload domain.Recommendation `json:"payload"`
}

// FeedHandler upgrades HTTP requests to websockets and streams recommendation
// events for one student.
type FeedHandler struct {
	hub      *FeedHub
	upgrader websocket.Upgrader
}

func NewFeedHandler(hub *FeedHub) *FeedHandler {
	return &FeedHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS streams recommendation events to the connected client until the
// connection drops.
func (h *FeedHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	studentID := r.URL.Query().Get("studentId")
	if studentID == "" {
		http.Error(w, "missing studentId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.hub.Subscribe(studentID)
	defer cancel()

	// Drain inbound frames to detect the peer closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case rec, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(feedMessage{Type: "recommendation", Payload: rec}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-closed:
			return
		}
	}
}
