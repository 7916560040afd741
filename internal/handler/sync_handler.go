package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"fieldsync-server/internal/domain"
	"fieldsync-server/internal/middleware"
	"fieldsync-server/internal/service"
	"fieldsync-server/pkg/response"
)

type SyncHandler struct {
	syncService *service.SyncService
}

func NewSyncHandler(syncService *service.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

func (h *SyncHandler) Push(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req domain.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	res, err := h.syncService.Push(r.Context(), userID, &req)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, res)
}

func (h *SyncHandler) Pull(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	since, err := parseWatermark(r.URL.Query().Get("lastPulledAt"))
	if err != nil {
		response.BadRequest(w, "invalid lastPulledAt parameter")
		return
	}

	res, err := h.syncService.Pull(r.Context(), userID, since)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, res)
}

func (h *SyncHandler) Changes(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	since, err := parseWatermark(r.URL.Query().Get("since"))
	if err != nil {
		response.BadRequest(w, "invalid since parameter")
		return
	}

	res, err := h.syncService.ChangesSince(r.Context(), since)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, res)
}

func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	response.JSON(w, http.StatusOK, h.syncService.Status(r.Context(), userID))
}

// parseWatermark rejects anything that is not an integer, including an
// absent parameter. A first-time client pulls everything by sending 0
// explicitly.
func parseWatermark(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
