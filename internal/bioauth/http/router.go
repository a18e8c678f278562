package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/service"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/store"
	"github.com/aussiebroadwan/bioauth/pkg/httpx"
	"github.com/aussiebroadwan/bioauth/pkg/jwtx"
	"github.com/aussiebroadwan/bioauth/pkg/slogx"

	_ "github.com/aussiebroadwan/bioauth/api/bioauth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store           store.Store
	AuthService     *service.AuthService
	IdentityService *service.IdentityService
	StatsService    *service.StatsService
	SessionService  *service.SessionService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerIdentities()
	r.registerLogin()
	r.registerSession()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Biometric Authentication Service API
//	@version		0.1.0
//	@description	Password and biometric template authentication. Biometric logins compare a probe template
//	@description	against enrolled templates by Hamming distance and accept at or below a threshold.
//	@description
//	@description				Session tokens are signed with EdDSA (Ed25519) and can be verified using the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/bioauth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerIdentities() {
	registerHandler := &RegisterHandler{
		IdentityService: r.IdentityService,
		SessionService:  r.SessionService,
	}

	// POST /v1/identities - strict by IP, public signup
	r.Mux.Handle("POST /v1/identities",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Only a password session may deactivate, so a stolen biometric match
	// cannot lock the owner out.
	deactivateHandler := &DeactivateHandler{IdentityService: r.IdentityService}
	r.Mux.Handle("POST /v1/identities/{id}/deactivate",
		httpx.Chain(deactivateHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyAMR(jwtx.AMRPassword),
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerLogin() {
	passwordHandler := &PasswordLoginHandler{
		AuthService:    r.AuthService,
		SessionService: r.SessionService,
	}
	biometricHandler := &BiometricLoginHandler{
		AuthService:    r.AuthService,
		SessionService: r.SessionService,
	}

	r.Mux.Handle("POST /v1/login/password",
		httpx.Chain(passwordHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/login/biometric",
		httpx.Chain(biometricHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSession() {
	verifyHandler := &VerifyHandler{AuthService: r.AuthService}
	profileHandler := &ProfileHandler{IdentityService: r.IdentityService}
	statsHandler := &StatsHandler{StatsService: r.StatsService}

	// 1:1 verification is a probe guess like login, keep it strict
	r.Mux.Handle("POST /v1/verify",
		httpx.Chain(verifyHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("GET /v1/profile",
		httpx.Chain(profileHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/stats",
		httpx.Chain(statsHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
