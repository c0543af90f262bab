package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/halvard/muninn/internal/assist"
)

// ChatHandler streams answers to vault questions over SSE.
type ChatHandler struct {
	svc *assist.Service
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(svc *assist.Service) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// Chat handles GET /api/chat. The answer streams as SSE frames: zero or more
// "token" events, an optional "sources" event, an "error" event on failure,
// and a terminal "done" event.
//
//	@Summary		Ask a question about the vault (SSE stream)
//	@Tags			chat
//	@Produce		text/event-stream
//	@Param			question	query	string	true	"Question to answer"
//	@Success		200	"SSE stream of token/sources/error/done events"
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/chat [get]
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	question := r.URL.Query().Get("question")
	if question == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'question' is required"))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	writeFrame := func(event string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	err := h.svc.Answer(r.Context(), question, func(c assist.Chunk) error {
		switch {
		case c.Err != "":
			return writeFrame("error", map[string]string{"message": c.Err})
		case c.Sources != nil:
			return writeFrame("sources", c.Sources)
		default:
			return writeFrame("token", map[string]string{"content": c.Token})
		}
	})
	if err != nil {
		// Client went away or the stream broke; nothing more to send.
		slog.Debug("chat stream ended", slog.String("error", err.Error()))
		return
	}

	_ = writeFrame("done", map[string]bool{"done": true})
}
