package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	calc "github.com/goliatone/go-calc"
	"github.com/goliatone/go-calc/config"
	"github.com/goliatone/go-calc/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := calc.DefaultLogger()

	db, err := calc.Connect(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := calc.CreateSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	users := calc.NewUsersRepository(db)
	ops := calc.NewOperationsRepository(db)

	tokens := calc.NewTokenService(
		[]byte(cfg.Auth.SigningKey),
		cfg.TokenTTL(),
		cfg.Auth.Issuer,
		logger,
	)

	auther := calc.NewAuthenticator(users, tokens).WithLogger(logger)

	srv := server.New(server.Config{
		Auth:       auther,
		Tokens:     tokens,
		Operations: ops,
		Logger:     logger,
	})

	go func() {
		if err := srv.Listen(cfg.Server.Addr); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	logger.Info("Server started", "addr", cfg.Server.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
}
