package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	app_errors "chat-capture/backend/internal/errors"
	"chat-capture/backend/internal/interfaces"
	"chat-capture/backend/internal/model"
)

// AccountHandler exposes the user-level remote store calls to UI layers.
type AccountHandler struct {
	account interfaces.AccountService
}

func NewAccountHandler(account interfaces.AccountService) *AccountHandler {
	return &AccountHandler{account: account}
}

// GetUserStats godoc
// @Summary      User statistics
// @Tags         Account
// @Produce      json
// @Success      200  {object}  model.UserStats
// @Failure      502  {object}  ErrorResponse
// @Router       /account/stats [get]
func (h *AccountHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.account.Stats(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// UpdateUserMetadata godoc
// @Summary      Push user metadata
// @Tags         Account
// @Accept       json
// @Produce      json
// @Param        request  body      UserMetadataRequest  true  "Metadata"
// @Success      200      {object}  StatusResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /account/metadata [put]
func (h *AccountHandler) UpdateUserMetadata(w http.ResponseWriter, r *http.Request) {
	var req UserMetadataRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	md := model.UserMetadata(req)
	if err := h.account.SyncUserMetadata(r.Context(), md); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// GetNotifications godoc
// @Summary      List notifications
// @Tags         Account
// @Produce      json
// @Success      200  {array}  model.Notification
// @Router       /notifications [get]
func (h *AccountHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.account.Notifications(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	if list == nil {
		list = []model.Notification{}
	}
	respondWithJSON(w, http.StatusOK, list)
}

// MarkNotificationRead godoc
// @Summary      Mark a notification as read
// @Tags         Account
// @Produce      json
// @Param        notificationID  path  string  true  "Notification ID"
// @Success      200  {object}  StatusResponse
// @Router       /notifications/{notificationID}/read [post]
func (h *AccountHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "notificationID")
	if err := h.account.MarkNotificationRead(r.Context(), id); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// TrackTemplateUsage godoc
// @Summary      Record use of a prompt template
// @Tags         Account
// @Produce      json
// @Param        templateID  path  string  true  "Template ID"
// @Success      200  {object}  StatusResponse
// @Router       /templates/{templateID}/use [post]
func (h *AccountHandler) TrackTemplateUsage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "templateID")
	if id == "" {
		respondWithError(w, fmt.Errorf("%w: template id is required", app_errors.ErrValidation))
		return
	}
	if err := h.account.TrackTemplateUsage(r.Context(), id); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}
