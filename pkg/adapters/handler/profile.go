package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/logging"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
)

type ProfileHandler struct {
	profiles ports.ProfileService
	avatars  ports.AvatarService
	logger   logging.Logger
}

func NewProfileHandler(profiles ports.ProfileService, avatars ports.AvatarService, logger logging.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, avatars: avatars, logger: logger}
}

type setUsernameRequest struct {
	Username string `json:"username" validate:"required"`
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=64"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=280"`
	AvatarRef   *string `json:"avatar_ref,omitempty" validate:"omitempty,max=512"`
}

type avatarUploadRequest struct {
	ContentType string `json:"content_type" validate:"required"`
}

type availabilityResponse struct {
	Username string              `json:"username"`
	Status   domain.Availability `json:"status"`
}

// CheckUsername answers the availability check used while typing. It is
// advisory only.
func (h *ProfileHandler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	candidate := r.URL.Query().Get("username")
	ownerID, _ := OwnerIDFromContext(r.Context())

	status, err := h.profiles.CheckUsername(r.Context(), candidate, ownerID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{Username: candidate, Status: status})
}

func (h *ProfileHandler) SetUsername(w http.ResponseWriter, r *http.Request) {
	var req setUsernameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	ownerID, _ := OwnerIDFromContext(r.Context())
	profile, err := h.profiles.SetUsername(r.Context(), ownerID, req.Username)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromContext(r.Context())
	profile, err := h.profiles.Get(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	ownerID, _ := OwnerIDFromContext(r.Context())
	profile, err := h.profiles.Update(r.Context(), ownerID, domain.ProfileChanges{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		AvatarRef:   req.AvatarRef,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// AvatarUpload returns a presigned upload form. The client POSTs the image
// with the returned fields and then saves the returned key as avatar_ref.
func (h *ProfileHandler) AvatarUpload(w http.ResponseWriter, r *http.Request) {
	var req avatarUploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	ownerID, _ := OwnerIDFromContext(r.Context())
	upload, err := h.avatars.UploadURL(r.Context(), ownerID, req.ContentType)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, upload)
}
