// Command imgqa checks catalog product images.
//
// With URL arguments it prints one JSON line per URL (result record plus
// verdict). With -serve it exposes the same analysis over HTTP.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	imgqa "github.com/anatolykoptev/go-imgqa"
	"github.com/anatolykoptev/go-imgqa/internal/config"
)

func main() {
	cfg, urls, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "imgqa: %v\n", err)
		os.Exit(2)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(logOutput(cfg.LogFile), &slog.HandlerOptions{Level: cfg.LogLevel})))

	qa := newAnalyzer(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Addr != "" {
		if err := serve(ctx, cfg.Addr, qa, cfg.HeadersOnly); err != nil {
			slog.Error("imgqa: server stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	if len(urls) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] image_urls...\n", os.Args[0])
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	failed := false
	for _, item := range qa.AnalyzeBatch(ctx, urls, imgqa.AnalyzeOpts{HeadersOnly: cfg.HeadersOnly}) {
		if item.Err != "" {
			failed = true
		}
		if err := enc.Encode(item); err != nil {
			slog.Error("imgqa: write result", "url", item.URL, "error", err)
			os.Exit(1)
		}
	}
	if failed {
		os.Exit(1)
	}
}

// newAnalyzer maps command settings onto the library configuration.
func newAnalyzer(cfg *config.Config) *imgqa.Config {
	tolerance := cfg.Tolerance
	qa := &imgqa.Config{
		HTTPClient:    &http.Client{Timeout: cfg.Timeout},
		UserAgent:     cfg.UserAgent,
		MaxBytes:      cfg.MaxBytes,
		Timeout:       cfg.Timeout,
		CropThreshold: cfg.CropThreshold,
		Tolerance:     &tolerance,
		Concurrency:   cfg.Concurrency,
		OnPanic: func(tag string, r any) {
			slog.Error("imgqa: recovered panic", "tag", tag, "panic", r)
		},
		OnAnalysis: func(ev imgqa.AnalysisEvent) {
			slog.Info("imgqa: analysed", "url", ev.URL, "verdict", ev.Verdict.String(),
				"scene", ev.Scene, "padding", ev.Padding, "took", ev.Duration.Round(time.Millisecond), "error", ev.Err)
		},
	}
	if cfg.RatePerSec > 0 {
		qa.Limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1)
	}
	return qa
}

// logOutput returns stderr, or a rolling file when path is set.
func logOutput(path string) io.Writer {
	if path == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 2,
		MaxAge:     28, // days
		Compress:   true,
	}
}
