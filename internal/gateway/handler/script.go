package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"podscript/internal/gateway/service/scripts"
	"podscript/internal/script"
)

// ScriptHandler exposes the script pipeline over plain JSON endpoints.
type ScriptHandler struct {
	svc *scripts.Service
}

func NewScriptHandler(svc *scripts.Service) *ScriptHandler {
	return &ScriptHandler{svc: svc}
}

func (h *ScriptHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req scripts.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	out, err := h.svc.Generate(r.Context(), req, nil)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, generateResponse(out))
}

func (h *ScriptHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scripts": rows})
}

func (h *ScriptHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *ScriptHandler) HandleContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	data, err := h.svc.Content(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/ssml+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid script id")
		return 0, false
	}
	return id, true
}

func generateResponse(out *scripts.GenerateOutput) map[string]any {
	return map[string]any{
		"script":    out.Record,
		"truncated": out.Truncated,
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scripts.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, scripts.ErrSourceUnusable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, script.ErrNotFound):
		writeError(w, http.StatusNotFound, "script not found")
	case errors.Is(err, script.ErrBlobWrite), errors.Is(err, script.ErrMetadataWrite):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
