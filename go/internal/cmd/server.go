package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mcdev12/hoops/go/internal/auction"
	"github.com/mcdev12/hoops/go/internal/config"
	"github.com/mcdev12/hoops/go/internal/roster"
	"github.com/mcdev12/hoops/go/internal/rpcutil"
	"github.com/mcdev12/hoops/go/internal/trade"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func setupServer(services *Services, workers *Workers, cfg config.Config) *http.Server {
	mux := http.NewServeMux()

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{rpcutil.ErrorCodeHeader},
	})

	registerServices(mux, services)
	registerRealtime(mux, workers)
	setupHealthCheck(mux, services)

	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           h2c.NewHandler(c.Handler(mux), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func registerServices(mux *http.ServeMux, services *Services) {
	opts := rpcutil.HandlerOptions()

	auctionPath, auctionHandler := auction.NewHandler(services.Auction, opts...)
	mux.Handle(auctionPath, auctionHandler)

	rosterPath, rosterHandler := roster.NewHandler(services.Roster, opts...)
	mux.Handle(rosterPath, rosterHandler)

	tradePath, tradeHandler := trade.NewHandler(services.Trade, opts...)
	mux.Handle(tradePath, tradeHandler)
}

func registerRealtime(mux *http.ServeMux, workers *Workers) {
	if workers.Hub != nil {
		workers.Hub.RegisterRoutes(mux)
	}
	if workers.OutboxHealth != nil {
		mux.Handle("GET /health/outbox", workers.OutboxHealth)
	}
}

func setupHealthCheck(mux *http.ServeMux, services *Services) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := services.ping(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}
