package httpapi

import (
	"log/slog"
	"net/http"

	"catalog-api/internal/auth"
	"catalog-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Route is one entry of the protection table. Guarded routes run the access
// token guard before the handler; the guard is the only per-route filter.
type Route struct {
	Method  string
	Path    string
	Guarded bool
	Handler gin.HandlerFunc
}

// Routes is the complete route table. Reads on products are public; every
// mutation and every users endpoint is guarded.
func (h Handlers) Routes() []Route {
	rs := []Route{
		{http.MethodGet, "/healthz", false, h.Healthz},
		{http.MethodPost, "/auth/login", false, h.Login},

		{http.MethodPost, "/users", true, h.CreateUser},
		{http.MethodGet, "/users", true, h.ListUsers},
		{http.MethodGet, "/users/:id", true, h.GetUser},
		{http.MethodPatch, "/users/:id/status", true, h.UpdateUserStatus},

		{http.MethodPost, "/products", true, h.CreateProduct},
		{http.MethodGet, "/products", false, h.ListProducts},
		{http.MethodGet, "/products/:id", false, h.GetProduct},
		{http.MethodPatch, "/products/:id", true, h.UpdateProduct},
		{http.MethodDelete, "/products/:id", true, h.DeleteProduct},
	}
	if h.Metrics != nil {
		rs = append(rs, Route{http.MethodGet, "/metrics", false, gin.WrapH(h.Metrics.Handler())})
	}
	return rs
}

// Register attaches routes to r, prepending guard to guarded entries.
func Register(r gin.IRoutes, routes []Route, guard gin.HandlerFunc) {
	for _, rt := range routes {
		chain := []gin.HandlerFunc{rt.Handler}
		if rt.Guarded {
			chain = append([]gin.HandlerFunc{guard}, chain...)
		}
		r.Handle(rt.Method, rt.Path, chain...)
	}
}

type RouterConfig struct {
	Logger      *slog.Logger
	Tokens      *auth.Manager
	CORSOrigins []string
	// TrustedProxies lists the IPs or CIDRs allowed to set X-Forwarded-For.
	// Empty means the client address is always the connection's peer.
	TrustedProxies []string
}

// NewRouter builds the engine: recovery, request logging, metrics, CORS, then
// the route table.
func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Error("invalid trusted proxies, trusting none", "err", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	if h.Metrics != nil {
		r.Use(h.Metrics.Middleware())
	}
	r.Use(CORS(cfg.CORSOrigins))

	Register(r, h.Routes(), auth.RequireAccessToken(cfg.Tokens))
	return r
}
