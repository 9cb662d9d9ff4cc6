package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/isys3001/todo-backend/internal/config"
	"github.com/isys3001/todo-backend/internal/db"
	"github.com/isys3001/todo-backend/internal/events"
	"github.com/isys3001/todo-backend/internal/httpserver"
	"github.com/isys3001/todo-backend/internal/logging"
	"github.com/isys3001/todo-backend/internal/middleware"
	"github.com/isys3001/todo-backend/internal/models"
	"github.com/isys3001/todo-backend/internal/repo"
	"github.com/isys3001/todo-backend/internal/service"
	"github.com/isys3001/todo-backend/internal/tokens"
)

const tokenTTL = time.Hour

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(middleware.RequestLogger(logger))

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	database, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := database.AutoMigrate(&models.User{}, &models.Todo{}); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	gormRepo := repo.New(database)
	tokenSvc := tokens.New(cfg.JWTSecret, tokenTTL)
	authSvc := &service.AuthService{Repo: gormRepo, Tokens: tokenSvc}
	todoSvc := &service.TodoService{Repo: gormRepo}

	producer := events.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: authSvc},
		TodoHandler: &httpserver.TodoHTTP{Svc: todoSvc, Producer: producer},
		AuthMW:      middleware.NewBearerAuth(authSvc),
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
