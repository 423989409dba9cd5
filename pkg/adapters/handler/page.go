package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/logging"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
)

// PageHandler serves public tenant pages.
type PageHandler struct {
	service ports.PageService
	logger  logging.Logger
}

func NewPageHandler(service ports.PageService, logger logging.Logger) *PageHandler {
	return &PageHandler{service: service, logger: logger}
}

type pageResponse struct {
	*domain.TenantPage
	LinksUnavailable bool `json:"links_unavailable,omitempty"`
}

func (h *PageHandler) GetPublicPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.Page(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if page.LinksErr != nil {
		w.Header().Set("Cache-Control", "no-store")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=60")
	}
	writeJSON(w, http.StatusOK, pageResponse{TenantPage: page, LinksUnavailable: page.LinksErr != nil})
}

func (h *PageHandler) Demo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pageResponse{TenantPage: h.service.Demo()})
}
