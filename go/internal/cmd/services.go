package main

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/hoops/go/internal/auction"
	"github.com/mcdev12/hoops/go/internal/config"
	"github.com/mcdev12/hoops/go/internal/roster"
	"github.com/mcdev12/hoops/go/internal/trade"
)

type Services struct {
	Auction *auction.Service
	Roster  *roster.Service
	Trade   *trade.Service

	auctionApp *auction.App
	ping       func(ctx context.Context) error
}

func setupServices(infra *Infra, clock clockwork.Clock, cfg config.Config) *Services {
	// Store → App → Service
	cache := auction.NewMarketCache(cfg.Market.CacheTTL)
	auctionApp := auction.NewApp(infra.Store, clock, cfg.Market.Rules, cache)
	rosterApp := roster.NewApp(infra.Store, clock)
	tradeApp := trade.NewApp(infra.Store, clock)

	return &Services{
		Auction:    auction.NewService(auctionApp),
		Roster:     roster.NewService(rosterApp),
		Trade:      trade.NewService(tradeApp),
		auctionApp: auctionApp,
		ping:       infra.Store.Ping,
	}
}
