package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"flashback-app/internal/auth"
	"flashback-app/internal/models"

	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// getUserFromRequest resolves the authenticated user from the
// Authorization bearer token.
func getUserFromRequest(r *http.Request, authService *auth.Service) (*models.User, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, fmt.Errorf("missing bearer token")
	}
	return authService.GetUserFromToken(r.Context(), token)
}

func urlParamInt(r *http.Request, name string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, name))
}
