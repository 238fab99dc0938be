package handlers

import (
	"net/http"

	"github.com/LepeyevaEmiliya/projects/services"
	"github.com/LepeyevaEmiliya/projects/utils"
)

type AuthHandler struct {
	responder
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService, development bool) *AuthHandler {
	return &AuthHandler{responder: responder{development: development}, auth: auth}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.Envelope{Success: true, Data: user, Message: "User registered successfully"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, res)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.GetProfile(r.Context(), currentUser(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, user)
}

type profileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), currentUser(r).ID, req.Name, req.Email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, user)
}

// changePasswordRequest accepts the camelCase names the web client sends as
// well as snake_case.
type changePasswordRequest struct {
	OldPassword      string `json:"oldPassword"`
	NewPassword      string `json:"newPassword"`
	OldPasswordSnake string `json:"old_password"`
	NewPasswordSnake string `json:"new_password"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.OldPassword == "" {
		req.OldPassword = req.OldPasswordSnake
	}
	if req.NewPassword == "" {
		req.NewPassword = req.NewPasswordSnake
	}

	if err := h.auth.ChangePassword(r.Context(), currentUser(r).ID, req.OldPassword, req.NewPassword); err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteMessage(w, http.StatusOK, "Password changed successfully")
}
