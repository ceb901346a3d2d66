package trigger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Default gjson paths of the message text and author in a webhook body.
const (
	DefaultContentPath = "content"
	DefaultAuthorPath  = "author.username"
)

// maxBodyBytes bounds a webhook request body.
const maxBodyBytes = 1 << 20

// WebhookOption configures a Webhook.
type WebhookOption func(*Webhook)

// WithContentPath sets the gjson path of the message text.
func WithContentPath(path string) WebhookOption {
	return func(w *Webhook) {
		if path != "" {
			w.contentPath = path
		}
	}
}

// WithAuthorPath sets the gjson path of the message author.
func WithAuthorPath(path string) WebhookOption {
	return func(w *Webhook) {
		if path != "" {
			w.authorPath = path
		}
	}
}

// WithWebhookLogger sets the logger.
func WithWebhookLogger(logger *slog.Logger) WebhookOption {
	return func(w *Webhook) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Webhook is an http.Handler accepting POSTed JSON chat messages.
// The reply is a JSON object with status, text, action and run_id.
type Webhook struct {
	handler     Handler
	contentPath string
	authorPath  string
	logger      *slog.Logger
}

// NewWebhook creates a webhook handler feeding h.
func NewWebhook(h Handler, opts ...WebhookOption) *Webhook {
	w := &Webhook{
		handler:     h,
		contentPath: DefaultContentPath,
		authorPath:  DefaultAuthorPath,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ServeHTTP implements http.Handler.
func (wh *Webhook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if !gjson.ValidBytes(body) {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	content := gjson.GetBytes(body, wh.contentPath)
	if content.Type != gjson.String {
		http.Error(w, fmt.Sprintf("missing string field %q", wh.contentPath), http.StatusUnprocessableEntity)
		return
	}
	author := gjson.GetBytes(body, wh.authorPath).String()

	// Playback must not stop when the client goes away.
	ctx := context.WithoutCancel(r.Context())
	reply := wh.handler.Handle(ctx, Message{Text: content.String(), Author: author, Source: "webhook"})

	out, err := encodeReply(reply)
	if err != nil {
		wh.logger.Error("failed to encode reply", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(out); err != nil {
		wh.logger.Warn("failed to write reply", "error", err)
	}
}

func encodeReply(r Reply) ([]byte, error) {
	out, err := sjson.SetBytes([]byte("{}"), "status", r.Kind.String())
	if err != nil {
		return nil, err
	}
	fields := []struct{ path, value string }{
		{"text", r.Text},
		{"action", r.Action},
		{"run_id", r.RunID},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if out, err = sjson.SetBytes(out, f.path, f.value); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Server serves a Webhook at /message and a health check at /healthz.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// NewServer creates a server listening on addr.
func NewServer(addr string, hook *Webhook, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	mux := http.NewServeMux()
	mux.Handle("/message", hook)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "ok\n")
	})
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger.With("component", "webhook"),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("webhook shutdown", "error", err)
		}
	}()

	s.logger.Info("webhook listening", "addr", ln.Addr().String())
	err := s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-stopped
		return nil
	}
	return err
}
