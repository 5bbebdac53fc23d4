package api

import (
	"net/http"

	"github.com/dmitrijs2005/civicdesk/internal/server/services"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	u, err := h.users.Register(r.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		CPF:       req.CPF,
		Phone:     req.Phone,
		BirthDate: req.BirthDate.timePtr(),
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{Message: "register successful", User: u})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	res, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message:      "login successful",
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         res.User,
	})
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	access, err := h.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, accessTokenResponse{Message: "access token refreshed", AccessToken: access})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.users.Logout(r.Context(), req.RefreshToken); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeMessage(w, http.StatusOK, "logout successful")
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	u, err := h.users.GetMe(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{User: u})
}

// EditUser accepts multipart form fields plus an optional "pfp" file, or a
// plain JSON body without a photo.
func (h *Handler) EditUser(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var (
		req   editProfileRequest
		photo *services.Photo
	)

	if isMultipart(r) {
		if err := h.parseMultipart(w, r, 1); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		f := &form{get: r.FormValue}
		req = editProfileRequest{
			Name:      f.str("name"),
			Phone:     f.str("phone"),
			CPF:       f.str("cpf"),
			BirthDate: f.timestamp("birthDate", "birth_date"),
		}
		if f.err != nil {
			writeError(w, r, h.log, f.err)
			return
		}
		if fhs := r.MultipartForm.File["pfp"]; len(fhs) > 0 {
			photo, err = readPhoto(fhs[0])
			if err != nil {
				writeError(w, r, h.log, err)
				return
			}
		}
	} else if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := validateRequest(&req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	u, err := h.users.EditProfile(r.Context(), userID, services.ProfileInput{
		Name:      req.Name,
		Phone:     req.Phone,
		CPF:       req.CPF,
		BirthDate: req.BirthDate.timePtr(),
	}, photo)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Message: "user updated", User: u})
}
