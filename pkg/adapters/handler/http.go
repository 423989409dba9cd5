package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/logging"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
)

// HTTPHandler serves the owner's link API.
type HTTPHandler struct {
	service ports.LinkService
	logger  logging.Logger
}

func NewHTTPHandler(service ports.LinkService, logger logging.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

// CreateLinkRequest payload
type CreateLinkRequest struct {
	Title  string `json:"title" validate:"required,max=100"`
	Target string `json:"target" validate:"required,max=2048"`
	Icon   string `json:"icon,omitempty" validate:"max=32"`
}

// UpdateLinkRequest payload; omitted fields are left unchanged.
type UpdateLinkRequest struct {
	Title  *string `json:"title,omitempty" validate:"omitempty,max=100"`
	Target *string `json:"target,omitempty" validate:"omitempty,max=2048"`
	Icon   *string `json:"icon,omitempty" validate:"omitempty,max=32"`
}

// ReorderRequest lists every link id in the new display order.
type ReorderRequest struct {
	IDs []string `json:"ids" validate:"required,dive,required"`
}

type linksResponse struct {
	Links []domain.LinkItem `json:"links"`
}

func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromContext(r.Context())
	links, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, linksResponse{Links: links})
}

func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	ownerID, _ := OwnerIDFromContext(r.Context())
	link, err := h.service.Add(r.Context(), ownerID, req.Title, req.Target, req.Icon)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateLinkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	ownerID, _ := OwnerIDFromContext(r.Context())
	link, err := h.service.Update(r.Context(), ownerID, r.PathValue("id"), domain.LinkChanges{
		Title:  req.Title,
		Target: req.Target,
		Icon:   req.Icon,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerIDFromContext(r.Context())
	if err := h.service.Delete(r.Context(), ownerID, r.PathValue("id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reorder replaces the whole order at once. The body must name every link
// exactly once. The new list is returned, or 204 when the order was saved but
// could not be read back.
func (h *HTTPHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	ownerID, _ := OwnerIDFromContext(r.Context())
	links, err := h.service.Reorder(r.Context(), ownerID, req.IDs)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if links == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, linksResponse{Links: links})
}
