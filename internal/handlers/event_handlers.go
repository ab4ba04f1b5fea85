package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"flashback-app/internal/auth"
	"flashback-app/internal/models"
	"flashback-app/internal/services"
	"flashback-app/pkg/logger"

	"github.com/go-chi/chi/v5"
)

type EventHandlers struct {
	eventService     *services.EventService
	flashbackService *services.FlashbackService
	authService      *auth.Service
}

func NewEventHandlers(eventService *services.EventService, flashbackService *services.FlashbackService, authService *auth.Service) *EventHandlers {
	return &EventHandlers{
		eventService:     eventService,
		flashbackService: flashbackService,
		authService:      authService,
	}
}

func (h *EventHandlers) Routes(r chi.Router) {
	r.Get("/events", h.ListEvents)
	r.Post("/events", h.CreateEvent)
	r.Get("/events/{id}", h.GetEvent)
	r.Post("/events/{id}/close", h.CloseEvent)
	r.Delete("/events/{id}/leave", h.LeaveEvent)
	r.Get("/events/{id}/members", h.ListMembers)
	r.Get("/events/{id}/messages", h.ListMessages)
	r.Post("/events/{id}/invites", h.InviteUser)
	r.Get("/events/{id}/code", h.GetInviteCode)
	r.Get("/events/{id}/flashbacks", h.ListFlashbacks)
	r.Post("/events/{id}/flashbacks", h.CreateFlashback)
	r.Get("/invites", h.ListInvites)
	r.Post("/invites/{id}/respond", h.RespondInvite)
	r.Post("/join/{code}", h.JoinByCode)
}

func (h *EventHandlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	user, err := getUserFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	event, err := h.eventService.CreateEvent(r.Context(), &req, user.ID)
	if err != nil {
		logger.Error().Err(err).Msg("create event failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

func (h *EventHandlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	user, err := getUserFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	events, err := h.eventService.ListUserEvents(r.Context(), user.ID)
	if err != nil {
		logger.Error().Err(err).Msg("list events failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	if _, err := getUserFromRequest(r, h.authService); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	eventID, err := urlParamInt(r, "id")
	if err != nil {
		http.Error(w, "invalid event ID", http.StatusBadRequest)
		return
	}

	event, err := h.eventService.GetEvent(r.Context(), eventID)
	if err != nil {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandlers) CloseEvent(w http.ResponseWriter, r *http.Request) {
	user, err := getUserFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	eventID, err := urlParamInt(r, "id")
	if err != nil {
		http.Error(w, "invalid event ID", http.StatusBadRequest)
		return
	}

	if err := h.eventService.CloseEvent(r.Context(), eventID, user.ID); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandlers) LeaveEvent(w http.ResponseWriter, r *http.Request) {
	user, err := getUserFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	eventID, err := urlParamInt(r, "id")
	if err != nil {
		http.Error(w, "invalid event ID", http.StatusBadRequest)
		return
	}

	if err := h.eventService.LeaveEvent(r.Context(), eventID, user.ID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	user, err := getUserFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	eventID, err := urlParamInt(r, "id")
	if err != nil {
		http.Error(w, "invalid event ID", http.StatusBadRequest)
		return
	}

	members, err := h.eventService.ListMembers(r.Context(), eventID, user.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	writeJSON(w, http.StatusOK, members)
}

func (h *EventHandlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	user, err := getUserFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	eventID, err := urlParamInt(r, "id")
	if err != nil {
		http.Error(w, "invalid event ID", http.StatusBadRequest)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	var before time.Time
	if raw := r.URL.Query().Get("before"); raw != "" {
		before, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "invalid before timestamp", http.StatusBadRequest)
			return
		}
	}

	messages, err := h.eventService.ListMessages(r.Context(), eventID, user.ID, limit, before)
	if err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

func (h *EventHandlers) InviteUser(w http.ResponseWriter, r *http.Request) {
	user, err := getUserFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	eventID, err := urlParamInt(r, "id")
	if err != nil {
		http.Error(w, "invalid event ID", http.StatusBadRequest)
		return
	}

	var req models.InviteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	invite, err := h.eventService.InviteUser(r.Context(), eventID, user.ID, req.Username)
	if err != nil {
		logger.Error().Err(err).Msg("invite user failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, invite)
}

func (h *EventHandlers) ListInvites(w http.ResponseWriter, r *http.Request) {
	user, err := getUserFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	invites, err := h.eventService.ListUserInvites(r.Context(), user.ID)
	if err != nil {
		logger.Error().Err(err).Msg("list invites failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, invites)
}

func (h *EventHandlers) RespondInvite(w http.ResponseWriter, r *http.Request) {
	user, err := getUserFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	inviteID, err := urlParamInt(r, "id")
	if err != nil {
		http.Error(w, "invalid invite ID", http.StatusBadRequest)
		return
	}

	var req models.RespondInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.eventService.RespondInvite(r.Context(), inviteID, user.ID, req.Status); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandlers) GetInviteCode(w http.ResponseWriter, r *http.Request) {
	user, err := getUserFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	eventID, err := urlParamInt(r, "id")
	if err != nil {
		http.Error(w, "invalid event ID", http.StatusBadRequest)
		return
	}

	code, err := h.eventService.GetInviteCode(r.Context(), eventID, user.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	writeJSON(w, http.StatusOK, code)
}

func (h *EventHandlers) JoinByCode(w http.ResponseWriter, r *http.Request) {
	user, err := getUserFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	event, err := h.eventService.JoinByCode(r.Context(), chi.URLParam(r, "code"), user.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandlers) CreateFlashback(w http.ResponseWriter, r *http.Request) {
	user, err := getUserFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	eventID, err := urlParamInt(r, "id")
	if err != nil {
		http.Error(w, "invalid event ID", http.StatusBadRequest)
		return
	}

	var req models.CreateFlashbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	flashback, err := h.flashbackService.CreateFlashback(r.Context(), eventID, user.ID, &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	writeJSON(w, http.StatusCreated, flashback)
}

func (h *EventHandlers) ListFlashbacks(w http.ResponseWriter, r *http.Request) {
	user, err := getUserFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	eventID, err := urlParamInt(r, "id")
	if err != nil {
		http.Error(w, "invalid event ID", http.StatusBadRequest)
		return
	}

	flashbacks, err := h.flashbackService.ListEventFlashbacks(r.Context(), eventID, user.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	writeJSON(w, http.StatusOK, flashbacks)
}
