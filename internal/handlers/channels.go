package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"chanrelay/internal/relay"
)

const maxPayloadBytes = 1 << 20

const (
	msgDone           = "Done"
	msgInvalidChannel = "Missing or invalid channel identifier"
	msgNoSuchChannel  = "Channel doesn't exist"
	msgInvalidJSON    = "Invalid JSON payload"
)

type ChannelHandler struct {
	registry *relay.Registry
}

func NewChannelHandler(registry *relay.Registry) *ChannelHandler {
	return &ChannelHandler{registry: registry}
}

func (h *ChannelHandler) RegisterRoutes(r chi.Router) {
	r.Get("/new-channel", h.newChannel)
	r.Post("/new-channel", h.newChannel)
	r.Get("/del-channel", h.delChannel)
	r.Post("/del-channel", h.delChannel)
	r.Post("/push/{channel}", h.push)
	r.Get("/status", h.status)
}

func (h *ChannelHandler) newChannel(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := h.registry.CreateChannel(id); err != nil {
		writeText(w, http.StatusBadRequest, msgInvalidChannel)
		return
	}
	log.Printf("channel created id=%q", id)
	writeText(w, http.StatusOK, msgDone)
}

func (h *ChannelHandler) delChannel(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := h.registry.DeleteChannel(id); err != nil {
		writeText(w, http.StatusBadRequest, msgInvalidChannel)
		return
	}
	log.Printf("channel deleted id=%q", id)
	writeText(w, http.StatusOK, msgDone)
}

func (h *ChannelHandler) push(w http.ResponseWriter, r *http.Request) {
	channel, err := pathParam(r, "channel")
	if err != nil || !h.registry.ChannelExists(channel) {
		writeText(w, http.StatusBadRequest, msgNoSuchChannel)
		return
	}

	payload, err := decodePayload(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		writeText(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	// the channel may have been deleted since the check above
	if err := h.registry.Publish(channel, payload); err != nil {
		if errors.Is(err, relay.ErrUnknownChannel) {
			writeText(w, http.StatusBadRequest, msgNoSuchChannel)
			return
		}
		log.Printf("publish error channel=%q err=%v", channel, err)
		http.Error(w, "publish failed", http.StatusInternalServerError)
		return
	}
	writeText(w, http.StatusOK, msgDone)
}

// pathParam returns the decoded URL parameter. chi matches against the raw
// path when the request has one, so the value may still be escaped.
func pathParam(r *http.Request, key string) (string, error) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v, nil
	}
	return url.PathUnescape(v)
}

// decodePayload reads exactly one JSON value. Numbers are kept as json.Number
// so they are forwarded digit for digit.
func decodePayload(body io.Reader) (any, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return payload, nil
}

type statusResponse struct {
	Status   string `json:"status"`
	Reported int64  `json:"reported_at"`
	relay.Stats
}

func (h *ChannelHandler) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, statusResponse{
		Status:   "OK",
		Reported: time.Now().Unix(),
		Stats:    h.registry.Stats(),
	})
}
