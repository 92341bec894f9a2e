package roles

import (
	"net/http"
	"strconv"

	"github.com/littlelemon/ordering-api/app/api"
	"github.com/littlelemon/ordering-api/models"
)

type MemberResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// GroupHandler serves the membership endpoints of a single role.
type GroupHandler struct {
	dir  *Directory
	role models.Role
}

func NewGroupHandler(dir *Directory, role models.Role) *GroupHandler {
	if dir == nil {
		panic("role directory cannot be nil")
	}
	return &GroupHandler{dir: dir, role: role}
}

func (h *GroupHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if _, err := h.dir.RequireManager(r.Context(), ManagersOnly); err != nil {
		api.WriteError(w, r, err, "Failed to check permissions")
		return
	}

	users, err := h.dir.ListUsers(r.Context(), h.role)
	if err != nil {
		api.WriteError(w, r, err, "Failed to fetch group members")
		return
	}

	response := make([]MemberResponse, len(users))
	for i, u := range users {
		response[i] = MemberResponse{ID: u.ID, Username: u.Username, Email: u.Email}
	}
	api.OKResponse(w, http.StatusOK, response)
}

func (h *GroupHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	if _, err := h.dir.RequireManager(r.Context(), ManagersOnly); err != nil {
		api.WriteError(w, r, err, "Failed to check permissions")
		return
	}

	var input struct {
		Username string `json:"username"`
	}
	if err := api.DecodeJSON(r, &input); err != nil {
		api.WriteError(w, r, err, "")
		return
	}

	user, err := h.dir.AssignRoleByUsername(r.Context(), input.Username, h.role)
	if err != nil {
		api.WriteError(w, r, err, "Failed to assign role")
		return
	}
	api.OKResponse(w, http.StatusCreated, map[string]string{
		"message": user.Username + " added to " + string(h.role),
	})
}

func (h *GroupHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	if _, err := h.dir.RequireManager(r.Context(), ManagersOnly); err != nil {
		api.WriteError(w, r, err, "Failed to check permissions")
		return
	}

	userID, err := strconv.ParseUint(r.PathValue("userID"), 10, 0)
	if err != nil {
		api.WriteError(w, r, models.ErrUserNotFound, "")
		return
	}

	if err := h.dir.RevokeRole(r.Context(), uint(userID), h.role); err != nil {
		api.WriteError(w, r, err, "Failed to revoke role")
		return
	}
	api.OKResponse(w, http.StatusOK, map[string]string{
		"message": "user removed from " + string(h.role),
	})
}
