package http

import (
	"net/http"
	"strconv"

	"github.com/aicompanion/api/internal/core/domain"
	"github.com/aicompanion/api/internal/core/ports"
)

type AssistantHandler struct {
	assistantService ports.AssistantService
	debug            bool
}

func NewAssistantHandler(assistantService ports.AssistantService, debug bool) *AssistantHandler {
	return &AssistantHandler{
		assistantService: assistantService,
		debug:            debug,
	}
}

type assistantRequest struct {
	Message string `json:"message"`
}

func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		writeError(w, domain.ErrUnauthorized, h.debug)
		return
	}

	var req assistantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.debug)
		return
	}

	reply, err := h.assistantService.Handle(r.Context(), userID, req.Message)
	if err != nil {
		writeError(w, err, h.debug)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"server_reply": reply})
}

func (h *AssistantHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		writeError(w, domain.ErrUnauthorized, h.debug)
		return
	}

	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, domain.ErrValidation, h.debug)
			return
		}
		page = parsed
	}

	result, err := h.assistantService.History(r.Context(), userID, page)
	if err != nil {
		writeError(w, err, h.debug)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
