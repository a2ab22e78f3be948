package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/luwen/lingoflash/internal/config"
	"github.com/luwen/lingoflash/internal/devgateway"
	"github.com/luwen/lingoflash/internal/logger"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("lingoflash dev gateway starting")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("llm_base_url=%s", cfg.LLMBaseURL)
	log.Debug("llm_model=%s", cfg.LLMModel)
	log.Debug("quiz_size=%d", cfg.QuizSize)

	var generator devgateway.QuizGenerator
	if cfg.LLMAPIKey != "" {
		generator = devgateway.NewLLMGenerator(devgateway.LLMConfig{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
			Size:    cfg.QuizSize,
		})
		log.Info("quiz generation backed by %s", cfg.LLMModel)
	} else {
		generator = devgateway.StaticGenerator{}
		log.Warn("LLM_API_KEY not set, serving canned quiz questions")
	}

	srv := devgateway.NewServer(generator)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // quiz generation is slow
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, shutting down", sig)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}
	log.Info("dev gateway stopped")
}
