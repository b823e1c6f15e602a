package adminhttp

import (
	"net/http"

	"github.com/goliatone/go-shopadmin/adapters/adminapi"
	"github.com/goliatone/go-shopadmin/catalog"
)

// Config configures the HTTP adapter.
type Config = adminapi.Config

// Handler exposes catalog HTTP endpoints.
type Handler struct {
	controller *adminapi.Controller
}

// NewHandler creates a new HTTP handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{controller: adminapi.NewController(cfg)}
}

// RegisterRoutes registers handlers on a compatible router.
func (h *Handler) RegisterRoutes(router any) {
	switch r := router.(type) {
	case interface{ Handle(string, http.Handler) }:
		r.Handle(h.basePath(), h)
		r.Handle(h.basePath()+"/", h)
	case interface {
		HandleFunc(string, func(http.ResponseWriter, *http.Request))
	}:
		r.HandleFunc(h.basePath(), h.ServeHTTP)
		r.HandleFunc(h.basePath()+"/", h.ServeHTTP)
	}
}

// ServeHTTP routes catalog endpoints.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if w == nil {
		return
	}
	if h == nil || h.controller == nil {
		adminapi.WriteError(catalogResponse{w: w}, catalog.NewError(catalog.KindInternal, "handler is nil", nil))
		return
	}
	h.controller.Serve(catalogRequest{r: r}, catalogResponse{w: w})
}

func (h *Handler) basePath() string {
	if h == nil || h.controller == nil {
		return adminapi.DefaultBasePath
	}
	path := h.controller.BasePath()
	if path == "" {
		return adminapi.DefaultBasePath
	}
	return path
}
