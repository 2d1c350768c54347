package http

import (
	"net/http"
	"strings"
	"time"

	"applygate/internal/domain/user"
	"applygate/internal/http/handlers"
	"applygate/internal/http/metrics"
	httpmw "applygate/internal/http/middleware"
)

type RouterDependencies struct {
	ApplicationHandler *handlers.ApplicationHandler
	PaymentHandler     *handlers.PaymentHandler
	WebhookHandler     *handlers.WebhookHandler
	AdminHandler       *handlers.AdminHandler
	MessageHandler     *handlers.MessageHandler
	MetricsHandler     *handlers.MetricsHandler
	AuthMiddleware     *httpmw.AuthMiddleware
	Metrics            *metrics.Collector
	RequestTimeout     time.Duration
}

type Router struct {
	deps RouterDependencies
}

const maxBodyBytes = 1 << 20

func NewRouter(deps RouterDependencies) http.Handler {
	return &Router{deps: deps}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := httpmw.Chain(r.baseHandler(), httpmw.RequestID, httpmw.Logging, httpmw.BodyLimit(maxBodyBytes), httpmw.Recover, httpmw.Metrics(r.deps.Metrics), httpmw.Timeout(r.deps.RequestTimeout))
	handler.ServeHTTP(w, req)
}

func (r *Router) baseHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path

		switch {
		case req.Method == http.MethodGet && path == "/health":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		case req.Method == http.MethodGet && path == "/metrics":
			r.deps.MetricsHandler.Get(w, req)
			return
		case req.Method == http.MethodPost && path == "/webhooks/paystack":
			r.deps.WebhookHandler.Paystack(w, req)
			return
		case req.Method == http.MethodGet && path == "/payments/verify":
			r.deps.PaymentHandler.Verify(w, req)
			return
		}

		if strings.HasPrefix(path, "/applications") || strings.HasPrefix(path, "/payments") || strings.HasPrefix(path, "/messages") || strings.HasPrefix(path, "/admin") {
			protected := r.deps.AuthMiddleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				r.handleProtected(w, req)
			}))
			protected.ServeHTTP(w, req)
			return
		}

		http.NotFound(w, req)
	})
}

func (r *Router) handleProtected(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Path

	switch {
	case req.Method == http.MethodPost && path == "/applications":
		httpmw.RequireRole(user.RoleApplicant)(http.HandlerFunc(r.deps.ApplicationHandler.Apply)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && path == "/applications":
		r.deps.ApplicationHandler.List(w, req)
		return
	case req.Method == http.MethodPatch && strings.HasPrefix(path, "/applications/") && strings.HasSuffix(path, "/status"):
		httpmw.RequireRole(user.RoleAdmin)(http.HandlerFunc(r.deps.AdminHandler.UpdateStatus)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodDelete && strings.HasPrefix(path, "/applications/"):
		r.deps.ApplicationHandler.Withdraw(w, req)
		return
	case req.Method == http.MethodPost && path == "/payments/charge-momo":
		httpmw.RequireRole(user.RoleApplicant)(http.HandlerFunc(r.deps.PaymentHandler.ChargeMobileMoney)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPost && path == "/payments/charge-saved":
		httpmw.RequireRole(user.RoleApplicant)(http.HandlerFunc(r.deps.PaymentHandler.ChargeSavedAuthorization)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && path == "/messages":
		r.deps.MessageHandler.List(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/messages/") && strings.HasSuffix(path, "/read"):
		r.deps.MessageHandler.MarkRead(w, req)
		return
	case req.Method == http.MethodPost && path == "/admin/refunds":
		httpmw.RequireRole(user.RoleAdmin)(http.HandlerFunc(r.deps.AdminHandler.Refund)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPost && path == "/admin/transfers":
		httpmw.RequireRole(user.RoleAdmin)(http.HandlerFunc(r.deps.AdminHandler.Transfer)).ServeHTTP(w, req)
		return
	}

	http.NotFound(w, req)
}
