package handlers

import (
	"encoding/json"
	"net/http"

	"flashback-app/internal/auth"
	"flashback-app/internal/models"
	"flashback-app/internal/services"
	"flashback-app/pkg/logger"

	"github.com/go-chi/chi/v5"
)

type FriendshipHandlers struct {
	friendshipService *services.FriendshipService
	authService       *auth.Service
}

func NewFriendshipHandlers(friendshipService *services.FriendshipService, authService *auth.Service) *FriendshipHandlers {
	return &FriendshipHandlers{
		friendshipService: friendshipService,
		authService:       authService,
	}
}

func (h *FriendshipHandlers) Routes(r chi.Router) {
	r.Get("/friends", h.ListFriends)
	r.Get("/friends/requests", h.ListRequests)
	r.Post("/friends/requests", h.SendRequest)
	r.Post("/friends/requests/{id}/respond", h.RespondRequest)
}

func (h *FriendshipHandlers) SendRequest(w http.ResponseWriter, r *http.Request) {
	user, err := getUserFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.SendFriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	request, err := h.friendshipService.SendRequest(r.Context(), user.ID, req.Username)
	if err != nil {
		logger.Error().Err(err).Msg("send friend request failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, request)
}

func (h *FriendshipHandlers) ListRequests(w http.ResponseWriter, r *http.Request) {
	user, err := getUserFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	requests, err := h.friendshipService.ListRequests(r.Context(), user.ID)
	if err != nil {
		logger.Error().Err(err).Msg("list friend requests failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, requests)
}

func (h *FriendshipHandlers) RespondRequest(w http.ResponseWriter, r *http.Request) {
	user, err := getUserFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	requestID, err := urlParamInt(r, "id")
	if err != nil {
		http.Error(w, "invalid request ID", http.StatusBadRequest)
		return
	}

	var req models.RespondFriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.friendshipService.RespondRequest(r.Context(), requestID, user.ID, req.Status); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FriendshipHandlers) ListFriends(w http.ResponseWriter, r *http.Request) {
	user, err := getUserFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	friends, err := h.friendshipService.ListFriends(r.Context(), user.ID)
	if err != nil {
		logger.Error().Err(err).Msg("list friends failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, friends)
}
