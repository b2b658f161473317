package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"courier/internal/blob"
	"courier/internal/inbox"
)

// Config tunes the relay.
type Config struct {
	// PublicURL is the externally visible base URL used in returned locations.
	PublicURL       string
	LongPollTimeout time.Duration
	ItemTTL         time.Duration
	MaxItemSize     int64
	PurgeInterval   time.Duration
}

func (c *Config) setDefaults() {
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")
	if c.LongPollTimeout <= 0 {
		c.LongPollTimeout = 30 * time.Second
	}
	if c.ItemTTL <= 0 {
		c.ItemTTL = 30 * 24 * time.Hour
	}
	if c.MaxItemSize <= 0 {
		c.MaxItemSize = 64 << 10
	}
	if c.PurgeInterval <= 0 {
		c.PurgeInterval = 10 * time.Minute
	}
}

// Server serves inboxes and blobs.
type Server struct {
	cfg      Config
	inboxes  inbox.Store
	notify   inbox.Notifier
	blobs    blob.Server
	log      *zap.Logger
	upgrader websocket.Upgrader
	now      func() time.Time
}

// New builds a server. A nil notifier uses an in-process hub.
func New(cfg Config, inboxes inbox.Store, notify inbox.Notifier, blobs blob.Server, log *zap.Logger) *Server {
	cfg.setDefaults()
	if notify == nil {
		notify = inbox.NewHub()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:     cfg,
		inboxes: inboxes,
		notify:  notify,
		blobs:   blobs,
		log:     log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		now: time.Now,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.accessLog)

	r.HandleFunc("/inbox", s.handleCreateInbox).Methods(http.MethodPost)
	r.HandleFunc("/inbox/{id}", s.handlePush).Methods(http.MethodPost)
	r.HandleFunc("/inbox/{id}/items/{item}", s.handleFetch).Methods(http.MethodGet)

	owned := r.PathPrefix("/inbox/{id}").Subrouter()
	owned.Use(s.requireOwner)
	owned.HandleFunc("", s.handleList).Methods(http.MethodGet)
	owned.HandleFunc("/ws", s.handleWatch).Methods(http.MethodGet)
	owned.HandleFunc("/items/{item}", s.handleDelete).Methods(http.MethodDelete)

	if s.blobs != nil {
		r.HandleFunc("/blob", s.handleUpload).Methods(http.MethodPost)
		r.HandleFunc("/blob/{name}", s.handleDownload).Methods(http.MethodGet)
	}
	return r
}

// RunHousekeeping purges expired blobs every PurgeInterval until ctx ends.
func (s *Server) RunHousekeeping(ctx context.Context) {
	if s.blobs == nil {
		return
	}
	if err := s.blobs.CreateContainerIfNotExist(ctx); err != nil {
		s.log.Error("create blob container", zap.Error(err))
	}
	t := time.NewTicker(s.cfg.PurgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.blobs.PurgeExpiredBefore(ctx, s.now().UTC()); err != nil {
				s.log.Warn("purge expired blobs", zap.Error(err))
			}
		}
	}
}

func (s *Server) inboxURL(id string) string { return s.cfg.PublicURL + "/inbox/" + id }

func (s *Server) itemURL(inboxID, itemID string) string {
	return s.inboxURL(inboxID) + "/items/" + itemID
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
