package handlers

import (
	"net/http"

	"flashback-app/internal/auth"
	"flashback-app/internal/services"
	"flashback-app/pkg/logger"

	"github.com/go-chi/chi/v5"
)

type NotificationHandlers struct {
	notificationService *services.NotificationService
	authService         *auth.Service
}

func NewNotificationHandlers(notificationService *services.NotificationService, authService *auth.Service) *NotificationHandlers {
	return &NotificationHandlers{
		notificationService: notificationService,
		authService:         authService,
	}
}

func (h *NotificationHandlers) Routes(r chi.Router) {
	r.Get("/notifications", h.ListNotifications)
}

func (h *NotificationHandlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user, err := getUserFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	notifications, err := h.notificationService.ListUserNotifications(r.Context(), user.ID)
	if err != nil {
		logger.Error().Err(err).Msg("list notifications failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}
