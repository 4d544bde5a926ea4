// Package httpd exposes the broker over HTTP.
//
// Routes, per queue name:
//
//	PUT /queue/{name}            enqueue the JSON body verbatim
//	GET /queue/{name}?timeout=N  dequeue, blocking up to N seconds
//
// Status mapping: 200 delivered/accepted, 404 no message within the wait,
// 400 malformed name/body/timeout, 429 queue or message limit reached,
// 503 broker shut down.
package httpd

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	broker "github.com/jdziat/simple-message-broker"
	"github.com/jdziat/simple-message-broker/pkg/security"
)

// Handler creates the http.Handler serving the broker API.
//
// Usage:
//
//	srv := &http.Server{Addr: ":8080", Handler: httpd.Handler(b)}
func Handler(b *broker.Broker, opts ...Option) http.Handler {
	cfg := &config{logger: slog.Default()}
	for _, opt := range opts {
		opt.apply(cfg)
	}

	h := &queueHandler{broker: b, logger: cfg.logger}

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /queue/{queue}", h.put)
	mux.HandleFunc("GET /queue/{queue}", h.get)
	return mux
}

type queueHandler struct {
	broker *broker.Broker
	logger *slog.Logger
}

func (h *queueHandler) put(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("queue")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, security.MaxPayloadSize+1))
	if err != nil {
		h.logger.Warn("failed to read enqueue body", "queue", name, "error", err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	if _, err := h.broker.Enqueue(r.Context(), name, body); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *queueHandler) get(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("queue")

	// Absent timeout means a non-blocking poll.
	wait := time.Duration(0)
	if raw := r.URL.Query().Get("timeout"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds < 0 {
			h.logger.Warn("invalid timeout parameter", "queue", name, "timeout", raw)
			http.Error(w, "", http.StatusBadRequest)
			return
		}
		wait = time.Duration(seconds) * time.Second
	}

	env, err := h.broker.Dequeue(r.Context(), name, wait)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	// The payload is returned byte-for-byte as it was submitted.
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Message-Id", env.ID)
	if _, err := w.Write(env.Payload); err != nil {
		h.logger.Error("failed to write response body", "queue", name, "error", err)
	}
}

// fail maps broker errors onto HTTP status codes.
func (h *queueHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, broker.ErrNoMessage):
		http.Error(w, "", http.StatusNotFound)
	case errors.Is(err, broker.ErrInvalidQueueName),
		errors.Is(err, broker.ErrQueueNameTooLong),
		errors.Is(err, broker.ErrInvalidPayload),
		errors.Is(err, broker.ErrPayloadTooLarge),
		errors.Is(err, broker.ErrInvalidWait):
		http.Error(w, "", http.StatusBadRequest)
	case errors.Is(err, broker.ErrTooManyQueues), errors.Is(err, broker.ErrQueueFull):
		http.Error(w, "", http.StatusTooManyRequests)
	case errors.Is(err, broker.ErrQueueClosed), errors.Is(err, broker.ErrBrokerClosed):
		http.Error(w, "", http.StatusServiceUnavailable)
	case errors.Is(err, r.Context().Err()):
		// Client went away; nothing useful to write.
		h.logger.Debug("request cancelled", "path", r.URL.Path)
	default:
		h.logger.Error("broker error", "path", r.URL.Path, "error", err)
		http.Error(w, "", http.StatusInternalServerError)
	}
}
