package auth

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/littlelemon/ordering-api/app/api"
	"github.com/littlelemon/ordering-api/models"
)

type UserResponse struct {
	ID          uint     `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	IsSuperuser bool     `json:"is_superuser"`
	Roles       []string `json:"roles"`
}

type AuthHandler struct {
	service *Service
}

func NewAuthHandler(service *Service) *AuthHandler {
	if service == nil {
		panic("auth service cannot be nil")
	}
	return &AuthHandler{service: service}
}

func toUserResponse(u *models.User, roles []models.Role) UserResponse {
	resp := UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsSuperuser: u.IsSuperuser,
		Roles:       make([]string, len(roles)),
	}
	for i, r := range roles {
		resp.Roles[i] = string(r)
	}
	return resp
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := api.DecodeJSON(r, &input); err != nil {
		api.WriteError(w, r, err, "")
		return
	}

	user, err := h.service.Register(r.Context(), input.Username, input.Email, input.Password)
	if err != nil {
		api.WriteError(w, r, err, "Failed to create user")
		return
	}
	api.OKResponse(w, http.StatusCreated, toUserResponse(user, nil))
}

func (h *AuthHandler) HandleObtainToken(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := api.DecodeJSON(r, &input); err != nil {
		api.WriteError(w, r, err, "")
		return
	}

	token, err := h.service.ObtainToken(r.Context(), input.Username, input.Password)
	if err != nil {
		var throttled *ThrottledError
		if errors.As(err, &throttled) {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(throttled.RetryAfter.Seconds()))))
		}
		api.WriteError(w, r, err, "Failed to issue token")
		return
	}
	api.OKResponse(w, http.StatusOK, map[string]string{"token": token})
}

func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Me(r.Context())
	if err != nil {
		api.WriteError(w, r, err, "Failed to fetch user")
		return
	}
	api.OKResponse(w, http.StatusOK, toUserResponse(profile.User, profile.Roles))
}
