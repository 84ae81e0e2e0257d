package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saferoadsa/saferoad/internal/database"
	"github.com/saferoadsa/saferoad/internal/logging"
	"github.com/saferoadsa/saferoad/internal/model"
	"github.com/saferoadsa/saferoad/internal/push"
	"github.com/saferoadsa/saferoad/internal/server"
	"github.com/saferoadsa/saferoad/internal/store"
	"github.com/saferoadsa/saferoad/internal/upload"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// promoteAdmin grants the admin role to an existing user. Run as
// `saferoad -promote-admin staff@municipality.gov.za` by an operator with
// access to the database file.
func promoteAdmin(dbPath, email string) error {
	db, err := database.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	users := store.NewUserStore(db)
	user, err := users.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("no user with email %s", email)
	}
	return users.SetRole(user.ID, model.RoleAdmin)
}

func main() {
	logger := logging.Setup(os.Getenv("SAFEROAD_LOG_LEVEL"))

	if len(os.Args) > 1 && os.Args[1] == "-generate-vapid-keys" {
		pub, priv, err := push.GenerateVAPIDKeys()
		if err != nil {
			logger.Error("generate vapid keys", "error", err)
			os.Exit(1)
		}
		fmt.Printf("SAFEROAD_VAPID_PUBLIC_KEY=%s\nSAFEROAD_VAPID_PRIVATE_KEY=%s\n", pub, priv)
		return
	}

	port := env("SAFEROAD_PORT", "8080")
	dbPath := env("SAFEROAD_DB_PATH", "saferoad.db")

	if len(os.Args) > 2 && os.Args[1] == "-promote-admin" {
		email := os.Args[2]
		if err := promoteAdmin(dbPath, email); err != nil {
			logger.Error("promote admin", "error", err, "email", email)
			os.Exit(1)
		}
		logger.Info("user promoted to admin", "email", email)
		return
	}

	jwtSecret := os.Getenv("SAFEROAD_JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("SAFEROAD_JWT_SECRET is required")
		os.Exit(1)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "error", err, "path", dbPath)
		os.Exit(1)
	}
	defer db.Close()

	pushCfg := push.Config{
		VAPIDPublicKey:  os.Getenv("SAFEROAD_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("SAFEROAD_VAPID_PRIVATE_KEY"),
	}
	if pushCfg.VAPIDPublicKey == "" || pushCfg.VAPIDPrivateKey == "" {
		logger.Warn("VAPID keys not configured, push notifications disabled",
			"hint", "run with -generate-vapid-keys or set SAFEROAD_VAPID_PUBLIC_KEY/SAFEROAD_VAPID_PRIVATE_KEY")
	}

	cfg := server.Config{
		JWTSecret:  jwtSecret,
		MapsAPIKey: os.Getenv("SAFEROAD_MAPS_API_KEY"),
		UploadDir:  env("SAFEROAD_UPLOAD_DIR", "uploads"),
		S3: upload.S3Config{
			Bucket:    os.Getenv("SAFEROAD_S3_BUCKET"),
			Region:    env("SAFEROAD_S3_REGION", "af-south-1"),
			AccessKey: os.Getenv("SAFEROAD_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("SAFEROAD_S3_SECRET_KEY"),
			Endpoint:  os.Getenv("SAFEROAD_S3_ENDPOINT"),
			PublicURL: os.Getenv("SAFEROAD_S3_PUBLIC_URL"),
		},
		Push: pushCfg,
	}

	srv := server.New(db, cfg, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Evict stale rate-limit windows in the background.
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("SafeRoad SA listening", "port", port, "db", dbPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
