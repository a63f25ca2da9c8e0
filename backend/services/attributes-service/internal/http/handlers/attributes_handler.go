package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"sessionstore/backend/services/attributes-service/internal/fine"
	"sessionstore/backend/services/attributes-service/internal/service"
)

// AttributesHandler serves the session attribute endpoints.
type AttributesHandler struct {
	svc    *service.AttributesService
	logger *zap.Logger
}

// NewAttributesHandler builds handler set.
func NewAttributesHandler(svc *service.AttributesService, logger *zap.Logger) *AttributesHandler {
	return &AttributesHandler{
		svc:    svc,
		logger: logger,
	}
}

type setAttributeRequest struct {
	Value any `json:"value"`
}

// HandleList handles GET /sessions/{sessionID}/attributes.
func (h *AttributesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	names, err := h.svc.Names(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to list attributes", zap.String("session_id", sessionID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list attributes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"names":      names,
	})
}

// HandleGet handles GET /sessions/{sessionID}/attributes/{name}.
func (h *AttributesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sessionID, name := r.PathValue("sessionID"), r.PathValue("name")
	if sessionID == "" || name == "" {
		writeError(w, http.StatusBadRequest, "session id and attribute name are required")
		return
	}

	value, found, err := h.svc.GetAttribute(r.Context(), sessionID, name)
	if err != nil {
		h.logger.Error("failed to read attribute", zap.String("session_id", sessionID), zap.String("name", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read attribute")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "attribute not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":  name,
		"value": value,
	})
}

// HandleSet handles PUT /sessions/{sessionID}/attributes/{name}. A null value
// removes the attribute.
func (h *AttributesHandler) HandleSet(w http.ResponseWriter, r *http.Request) {
	sessionID, name := r.PathValue("sessionID"), r.PathValue("name")
	if sessionID == "" || name == "" {
		writeError(w, http.StatusBadRequest, "session id and attribute name are required")
		return
	}

	var req setAttributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	previous, err := h.svc.SetAttribute(r.Context(), sessionID, name, req.Value)
	if err != nil {
		var nsErr *fine.NotSerializableError
		if errors.As(err, &nsErr) {
			writeError(w, http.StatusBadRequest, nsErr.Error())
			return
		}
		h.logger.Error("failed to set attribute", zap.String("session_id", sessionID), zap.String("name", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to set attribute")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":     name,
		"previous": previous,
	})
}

// HandleRemove handles DELETE /sessions/{sessionID}/attributes/{name}.
func (h *AttributesHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	sessionID, name := r.PathValue("sessionID"), r.PathValue("name")
	if sessionID == "" || name == "" {
		writeError(w, http.StatusBadRequest, "session id and attribute name are required")
		return
	}

	removed, found, err := h.svc.RemoveAttribute(r.Context(), sessionID, name)
	if err != nil {
		h.logger.Error("failed to remove attribute", zap.String("session_id", sessionID), zap.String("name", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to remove attribute")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "attribute not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    name,
		"removed": removed,
	})
}
