package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"courier/internal/domain"
	"courier/internal/inbox"
)

func (s *Server) handleCreateInbox(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	token, err := newToken()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := s.inboxes.CreateInbox(r.Context(), id, inbox.HashToken(token)); err != nil {
		s.log.Error("create inbox", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.log.Info("inbox created", zap.String("inbox", id))
	writeJSON(w, http.StatusCreated, domain.InboxCreation{InboxURL: s.inboxURL(id), OwnerToken: token})
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	body, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxItemSize+1))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	switch {
	case len(body) == 0:
		http.Error(w, "empty envelope", http.StatusBadRequest)
		return
	case int64(len(body)) > s.cfg.MaxItemSize:
		http.Error(w, "envelope too large", http.StatusRequestEntityTooLarge)
		return
	}

	now := s.now().UTC()
	item := inbox.Item{
		ID:      uuid.NewString(),
		Inbox:   id,
		Posted:  now,
		Expires: now.Add(s.cfg.ItemTTL),
		Body:    body,
	}
	err = s.inboxes.Push(r.Context(), item)
	if errors.Is(err, inbox.ErrNoInbox) {
		http.Error(w, "no such inbox", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("push item", zap.String("inbox", id), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.notify.Notify(r.Context(), id, item.ID)
	writeJSON(w, http.StatusAccepted, domain.InboxItem{URL: s.itemURL(id, item.ID), PostedUTC: now})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx := r.Context()

	var wake <-chan string
	if r.URL.Query().Get("longPoll") != "" {
		// Subscribe before listing so a push between the two is not missed.
		ch, cancel := s.notify.Subscribe(ctx, id)
		defer cancel()
		wake = ch
	}

	items, err := s.inboxes.List(ctx, id)
	if err == nil && len(items) == 0 && wake != nil {
		timer := time.NewTimer(s.cfg.LongPollTimeout)
		select {
		case <-wake:
			items, err = s.inboxes.List(ctx, id)
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
		timer.Stop()
	}
	if err != nil {
		s.log.Error("list inbox", zap.String("inbox", id), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]domain.InboxItem, 0, len(items))
	for _, it := range items {
		out = append(out, domain.InboxItem{URL: s.itemURL(id, it.ID), PostedUTC: it.Posted})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	it, err := s.inboxes.Get(r.Context(), vars["id"], vars["item"])
	if errors.Is(err, inbox.ErrNoItem) || errors.Is(err, inbox.ErrNoInbox) {
		http.Error(w, "no such item", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("fetch item", zap.String("item", vars["item"]), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/cbor")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(it.Body)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	err := s.inboxes.Delete(r.Context(), vars["id"], vars["item"])
	if errors.Is(err, inbox.ErrNoItem) {
		http.Error(w, "no such item", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("delete item", zap.String("item", vars["item"]), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

const (
	wsPingPeriod = 30 * time.Second
	wsWriteWait  = 10 * time.Second
)

type wsNotification struct {
	Item string `json:"item"`
}

// handleWatch streams a notification per pushed item until either side
// closes the socket.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	wake, cancel := s.notify.Subscribe(ctx, id)
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case itemID, ok := <-wake:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(wsNotification{Item: s.itemURL(id, itemID)}); err != nil {
				s.log.Debug("websocket write", zap.String("inbox", id), zap.Error(err))
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}
