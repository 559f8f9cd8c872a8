package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "tourquote/internal/config"
	intdb "tourquote/internal/db"
	"tourquote/internal/domain/models"
	router "tourquote/internal/http"
	"tourquote/internal/http/handlers"
	"tourquote/internal/repositories"
	"tourquote/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	api, cleanup, err := buildAPI(env)
	if err != nil {
		log.Fatalf("failed to init storage: %v", err)
	}
	defer cleanup()

	r := router.NewRouter(api)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s (storage=%s)", env.AppAddr, env.Storage)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	log.Println("server stopped cleanly")
}

func buildAPI(env intconfig.Env) (*handlers.API, func(), error) {
	if env.Storage == intconfig.StorageMemory {
		store := repositories.NewMemoryStore()
		if err := seedMemory(store, env); err != nil {
			return nil, nil, err
		}
		return &handlers.API{
			Proposals:  store,
			Vouchers:   store,
			MasterData: store,
			Env:        env,
		}, func() {}, nil
	}

	db, err := intconfig.ConnectDB(env)
	if err != nil {
		return nil, nil, err
	}
	if env.DBAutoMigrate {
		if err := intdb.EnsureSchema(db); err != nil {
			intconfig.CloseDB()
			return nil, nil, err
		}
	}
	return &handlers.API{
		Proposals:  repositories.MySQLProposalRepository{DB: db},
		Vouchers:   repositories.MySQLVoucherRepository{DB: db},
		MasterData: repositories.MySQLMasterDataRepository{DB: db},
		Env:        env,
		Ping:       intconfig.PingDB,
	}, intconfig.CloseDB, nil
}

func seedMemory(store *repositories.MemoryStore, env intconfig.Env) error {
	if env.SeedAdminPassword == "" {
		log.Println("[SEED] SEED_ADMIN_PASSWORD not set; in-memory store has no users")
		return nil
	}
	hash, err := services.HashPassword(env.SeedAdminPassword)
	if err != nil {
		return err
	}
	store.PutUser(models.User{
		ID:           1,
		Name:         "Administrator",
		Username:     "admin",
		Email:        "admin@localhost",
		Role:         "admin",
		Status:       "active",
		PasswordHash: hash,
	})
	log.Println("[SEED] in-memory admin user created")
	return nil
}
