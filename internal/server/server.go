package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/saferoadsa/saferoad/internal/alert"
	"github.com/saferoadsa/saferoad/internal/auth"
	"github.com/saferoadsa/saferoad/internal/handler"
	"github.com/saferoadsa/saferoad/internal/middleware"
	"github.com/saferoadsa/saferoad/internal/push"
	"github.com/saferoadsa/saferoad/internal/store"
	"github.com/saferoadsa/saferoad/internal/upload"
	ws "github.com/saferoadsa/saferoad/internal/websocket"
)

// Config carries everything the server needs beyond the database handle.
type Config struct {
	JWTSecret  string
	MapsAPIKey string
	UploadDir  string
	S3         upload.S3Config
	Push       push.Config
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	tokens      *auth.TokenService
	authH       *handler.AuthHandler
	reportH     *handler.ReportHandler
	routeH      *handler.RouteHandler
	notifH      *handler.NotificationHandler
	settingsH   *handler.SettingsHandler
	uploadH     *handler.UploadHandler
	analyticsH  *handler.AnalyticsHandler
	configH     *handler.ConfigHandler
	pushH       *handler.PushHandler
	rateLimiter *middleware.RateLimiter
	uploadDir   string
	logger      *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	reportStore := store.NewReportStore(db)
	routeStore := store.NewRouteStore(db)
	notificationStore := store.NewNotificationStore(db)
	settingsStore := store.NewSettingsStore(db)
	pushStore := store.NewPushStore(db)

	tokens := auth.NewTokenService(cfg.JWTSecret)

	pushLogger := logger.With("component", "push")
	var pushSvc *push.Service
	var pushH *handler.PushHandler
	var sender alert.Sender
	if cfg.Push.VAPIDPublicKey != "" && cfg.Push.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey)
		pushH = handler.NewPushHandler(pushStore, pushSvc, pushLogger)
		sender = pushSvc
	}

	engine := alert.NewEngine(settingsStore, notificationStore, pushStore, sender, logger.With("component", "alerts"))

	uploadSvc := upload.NewService(upload.Config{Dir: cfg.UploadDir, S3: cfg.S3})

	return &Server{
		db:          db,
		hub:         hub,
		tokens:      tokens,
		authH:       handler.NewAuthHandler(userStore, tokens, logger.With("component", "auth")),
		reportH:     handler.NewReportHandler(reportStore, userStore, engine, hub, logger.With("component", "report")),
		routeH:      handler.NewRouteHandler(routeStore, logger.With("component", "route")),
		notifH:      handler.NewNotificationHandler(notificationStore, logger.With("component", "notification")),
		settingsH:   handler.NewSettingsHandler(settingsStore, logger.With("component", "settings")),
		uploadH:     handler.NewUploadHandler(uploadSvc, logger.With("component", "upload")),
		analyticsH:  handler.NewAnalyticsHandler(reportStore, logger.With("component", "analytics")),
		configH:     handler.NewConfigHandler(cfg.MapsAPIKey),
		pushH:       pushH,
		rateLimiter: middleware.NewRateLimiter(),
		uploadDir:   cfg.UploadDir,
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("GET /api/config", s.configH.Get)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadDir))))

	// Browsing reports and the live feed are open; mutations need a token.
	outerMux.HandleFunc("GET /api/reports", s.reportH.List)
	outerMux.HandleFunc("GET /api/reports/{id}", s.reportH.Get)
	outerMux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.tokens)
	outerMux.Handle("/api/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)

	// Report API routes
	mux.HandleFunc("POST /api/reports", s.reportH.Create)
	mux.HandleFunc("PATCH /api/reports/{id}", s.reportH.Update)
	mux.HandleFunc("POST /api/reports/{id}/upvote", s.reportH.Upvote)

	// Route API routes
	mux.HandleFunc("GET /api/routes", s.routeH.List)
	mux.HandleFunc("POST /api/routes", s.routeH.Create)
	mux.HandleFunc("PATCH /api/routes/{id}", s.routeH.Update)
	mux.HandleFunc("DELETE /api/routes/{id}", s.routeH.Delete)

	// Notification API routes
	mux.HandleFunc("GET /api/notifications", s.notifH.List)
	mux.HandleFunc("POST /api/notifications/{id}/read", s.notifH.MarkRead)
	mux.HandleFunc("GET /api/notification-settings", s.settingsH.Get)
	mux.HandleFunc("PUT /api/notification-settings", s.settingsH.Put)

	// Photo upload
	mux.HandleFunc("POST /api/upload", s.uploadH.Upload)

	// Analytics API routes (admin only)
	mux.Handle("GET /api/analytics/summary", middleware.RequireAdmin(http.HandlerFunc(s.analyticsH.Summary)))
	mux.Handle("GET /api/analytics/hotspots", middleware.RequireAdmin(http.HandlerFunc(s.analyticsH.Hotspots)))
	mux.Handle("GET /api/analytics/trends", middleware.RequireAdmin(http.HandlerFunc(s.analyticsH.Trends)))

	// Push notification API routes
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	}
}
