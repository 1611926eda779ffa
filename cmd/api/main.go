package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mt5-gateway/internal/api/handlers"
	"mt5-gateway/internal/api/middleware"
	"mt5-gateway/internal/config"
	"mt5-gateway/internal/logger"
	"mt5-gateway/internal/market"
	"mt5-gateway/internal/terminal"
	"mt5-gateway/internal/trade"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config")
	flag.Parse()

	log, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config", zap.String("path", *configPath), zap.Error(err))
	}

	// The terminal session is the process's only shared resource. It is
	// dialed once here and handed to every component.
	term, err := terminal.Dial(terminal.BridgeOptions{
		URL:      cfg.Terminal.BridgeURL,
		Login:    cfg.Terminal.Login,
		Password: cfg.Terminal.Password,
		Server:   cfg.Terminal.Server,
		Timeout:  time.Duration(cfg.Terminal.DialTimeoutSeconds) * time.Second,
	}, log)
	if err != nil {
		log.Fatal("failed to connect to terminal", zap.Error(err))
	}
	defer func() { _ = term.Close() }()

	extractor := market.NewExtractor(term, log, market.ExtractorConfig{
		TimeframeMinutes: cfg.Range.TimeframeMinutes,
		BarCount:         cfg.Range.Bars,
		Attempts:         cfg.Range.Attempts,
		Interval:         cfg.RangeBackoff(),
		Location:         cfg.ReferenceLocation(),
	})

	submitter := trade.NewSubmitter(term, log, trade.SubmitterConfig{
		Rules:                cfg.Trading.Symbols,
		Cutoff:               cfg.CutoffTime(),
		ReferenceLocation:    cfg.ReferenceLocation(),
		ServerLocation:       cfg.ServerLocation(),
		CloseDeviationPoints: cfg.CloseDeviation(),
	})

	calendar, err := market.NewCalendar(cfg.Trading.ExchangeMIC)
	if err != nil {
		log.Warn("exchange calendar unavailable",
			zap.String("mic", cfg.Trading.ExchangeMIC), zap.Error(err))
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))

	accountHandler := handlers.NewAccountHandler(term, log)
	marketHandler := handlers.NewMarketHandler(term, extractor, calendar, log)
	orderHandler := handlers.NewOrderHandler(term, submitter, cfg.ReferenceLocation(), log)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/account", accountHandler.GetAccount)
	router.GET("/price/:symbol", marketHandler.GetPrice)
	router.GET("/range/:ticker/:start/:end", marketHandler.GetRange)
	router.GET("/market_status", marketHandler.GetMarketStatus)
	router.POST("/order/:symbol/:direction/:entry/:stop/:profit/:rangeHigh/:rangeLow/:risk", orderHandler.PlaceOrder)
	router.POST("/close_all", orderHandler.CloseAll)
	router.GET("/open_positions", orderHandler.OpenPositions)
	router.GET("/orders", orderHandler.PendingOrders)
	router.GET("/trades", orderHandler.Trades)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("starting gateway", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
