package handler

import (
	"net/http"

	userdomain "occasion-ledger/internal/domain/user"
)

type registerUserRequest struct {
	Username string  `json:"username"`
	Email    *string `json:"email"`
}

type userResponse struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email"`
}

func (h *Handlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeNonFieldError(w, msgInvalidJSON)
		return
	}

	user, err := h.Users.Register(r.Context(), req.Username, trimmed(req.Email))
	if err != nil {
		h.writeDomainError(w, "users.register", err, "username", req.Username)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func toUserResponse(user *userdomain.User) userResponse {
	return userResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}
