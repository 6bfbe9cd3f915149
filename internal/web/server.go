// Package web runs the HTTP server that receives Telegram webhook
// deliveries and feeds them to the workflow.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/amirenger/My-Final-Telegram-Bot/internal/metrics"
	"github.com/amirenger/My-Final-Telegram-Bot/internal/telegram"
	"github.com/amirenger/My-Final-Telegram-Bot/internal/workflow"
)

// EventHandler processes one inbound workflow event.
type EventHandler interface {
	Handle(ctx context.Context, ev workflow.Event) error
}

// CallbackAcker acknowledges button presses so the chat client stops
// showing a progress spinner.
type CallbackAcker interface {
	AnswerCallbackQuery(ctx context.Context, callbackID string) error
}

// Config holds webhook server configuration.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server receives webhook deliveries on POST /webhook/{token}. The bot
// token doubles as the path secret: requests with any other token get a
// 404 and are never parsed.
type Server struct {
	httpServer *http.Server
	addr       string
	token      string
	handler    EventHandler
	acker      CallbackAcker
}

// NewServer creates the webhook server.
func NewServer(cfg Config, token string, handler EventHandler, acker CallbackAcker) *Server {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}

	s := &Server{
		addr:    cfg.Address,
		token:   token,
		handler: handler,
		acker:   acker,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleLiveness)
	r.Post("/webhook/{token}", s.handleWebhook)

	return r
}

// Start starts the webhook server.
func (s *Server) Start() error {
	log.Printf("webhook server listening on %s", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("webhook server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the webhook server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "Hello. I am alive!")
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := http.StatusOK
	defer func() {
		metrics.WebhookRequestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
		metrics.WebhookDuration.Observe(time.Since(start).Seconds())
	}()

	if chi.URLParam(r, "token") != s.token {
		status = http.StatusNotFound
		http.NotFound(w, r)
		return
	}

	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("decode webhook update: %v", err)
		status = http.StatusBadRequest
		http.Error(w, "bad request", status)
		return
	}

	// Ack button presses right away; the spinner should not wait for the
	// workflow to finish.
	if update.CallbackQuery != nil && s.acker != nil {
		if err := s.acker.AnswerCallbackQuery(r.Context(), update.CallbackQuery.ID); err != nil {
			log.Printf("answer callback query %s: %v", update.CallbackQuery.ID, err)
		}
	}

	ev, ok := EventFromUpdate(&update)
	if ok {
		// Handler errors are logged inside the workflow; the delivery is
		// still acknowledged so Telegram does not redeliver it.
		if err := s.handler.Handle(r.Context(), ev); err != nil {
			log.Printf("handle update %d: %v", update.UpdateID, err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintln(w, `{"ok":true}`)
}
