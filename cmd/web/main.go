package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/juho05/log"

	"github.com/restoka/closing"

	"github.com/restoka/closing/config"
	"github.com/restoka/closing/gate"
	"github.com/restoka/closing/handlers"
	"github.com/restoka/closing/recordapi"
	"github.com/restoka/closing/repos"
	"github.com/restoka/closing/repos/postgres"
	"github.com/restoka/closing/repos/sqlite"
	"github.com/restoka/closing/services"
)

func connectDB() (repos.DB, error) {
	dsn := config.DBConnection()
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.Connect(dsn)
	}
	return sqlite.Connect(dsn)
}

func run() error {
	handler := handlers.NewHandler()

	db, err := connectDB()
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	handler.SessionManager = scs.New()
	handler.SessionManager.Store = db.NewSessionRepository()
	handler.SessionManager.Lifetime = 72 * time.Hour
	handler.SessionManager.IdleTimeout = gate.TTL
	handler.SessionManager.Cookie.Secure = true

	client := recordapi.NewClient(config.RecordAPIURL(), config.RecordAPIKey())
	signer := services.NewTokenSigner(config.SessionSecret())

	sessionService := services.NewSessionService(handler.SessionManager, signer)
	handler.AuthService = services.NewAuthService(client, sessionService)
	handler.ClosingService = services.NewClosingService(client)
	handler.DirectoryService = services.NewDirectoryService(client)
	handler.LockWatcher = services.NewLockWatcher(client, config.LockPollInterval())
	handler.Gate = gate.New(sessionService, config.AdminHost())

	handler.RegisterRoutes()

	port := config.Port()

	cert := config.TLSCert()
	key := config.TLSKey()

	addr := fmt.Sprintf(":%d", port)
	log.Infof("Listening on %s...", addr)

	if cert != "" && key != "" {
		return http.ListenAndServeTLS(addr, cert, key, handler)
	}
	return http.ListenAndServe(addr, handler)
}

func main() {
	godotenv.Load()
	closing.Initialize()

	log.SetSeverity(config.LogLevel())
	log.SetOutput(config.LogFile())

	err := run()
	if err != nil {
		log.Fatalf("%s", err)
	}
}
