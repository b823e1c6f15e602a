package adminrouter

import (
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-shopadmin/adapters/adminapi"
	"github.com/goliatone/go-shopadmin/catalog"
)

// Config configures the go-router adapter.
type Config = adminapi.Config

// Handler exposes catalog routes for go-router.
type Handler struct {
	controller *adminapi.Controller
}

// NewHandler creates a go-router handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{controller: adminapi.NewController(cfg)}
}

// RegisterRoutes registers routes on a compatible go-router router.
func (h *Handler) RegisterRoutes(router any) {
	r, ok := router.(routeRegistrar)
	if !ok {
		return
	}
	base := h.basePath()
	entity := base + "/:entity"

	r.Get(base, h.Handle)
	r.Get(base+"/", h.Handle)
	r.Get(entity, h.Handle)
	r.Post(entity+"/query", h.Handle)
	r.Get(entity+"/schema", h.Handle)
	r.Get(entity+"/suggestions", h.Handle)
	r.Get(entity+"/history", h.Handle)
	r.Post(entity+"/history", h.Handle)
	r.Delete(entity+"/history", h.Handle)
	r.Post(entity+"/export", h.Handle)
	r.Post(entity+"/bulk-delete", h.Handle)
	r.Post(entity+"/reload", h.Handle)
	r.Get(entity+"/settings", h.Handle)
	r.Put(entity+"/settings", h.Handle)
	r.Get(entity+"/filters", h.Handle)
	r.Delete(entity+"/filters", h.Handle)
	r.Get(entity+"/remote", h.Handle)
	r.Post(entity+"/remote", h.Handle)
	r.Post(entity+"/remote-search", h.Handle)
}

// Handle executes the shared catalog workflow.
func (h *Handler) Handle(c router.Context) error {
	if c == nil {
		return nil
	}
	if h == nil || h.controller == nil {
		adminapi.WriteError(catalogResponse{ctx: c}, catalog.NewError(catalog.KindInternal, "handler is nil", nil))
		return nil
	}
	h.controller.Serve(catalogRequest{ctx: c}, catalogResponse{ctx: c})
	return nil
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

type routeRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}
