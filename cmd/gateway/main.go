package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frankieli/dice_arena/internal/config"
	gamedb "github.com/frankieli/dice_arena/internal/modules/game/repository/db"
	gameredis "github.com/frankieli/dice_arena/internal/modules/game/repository/redis"
	"github.com/frankieli/dice_arena/internal/modules/game/usecase"
	"github.com/frankieli/dice_arena/internal/modules/gateway/fanout"
	gatewayHttp "github.com/frankieli/dice_arena/internal/modules/gateway/http"
	"github.com/frankieli/dice_arena/internal/modules/gateway/ws"
	walletModule "github.com/frankieli/dice_arena/internal/modules/wallet"
	"github.com/frankieli/dice_arena/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	background := flag.Bool("d", false, "Run in background mode (disable console logging)")
	flag.Parse()

	godotenv.Load()
	cfg := config.LoadGatewayConfig()

	logger.InitWithFile("logs/dice_arena/gateway.log", cfg.Server.LogLevel, "json", !*background)
	defer logger.Flush()

	fmt.Println("🚀 Starting dice gateway... Logs are written to logs/dice_arena/gateway.log (rotating)")

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: logger.NewGormLogger(),
	})
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to get database instance")
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
	defer sqlDB.Close()
	logger.InfoGlobal().Msg("✅ Database connected")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer rdb.Close()
	logger.InfoGlobal().Msg("✅ Redis connected")

	rounds := gamedb.NewRoundRepository(db)
	bets := gamedb.NewBetRepository(db)
	settings := gamedb.NewSettingsRepository(db)
	cache := gameredis.NewStateCache(rdb)
	walletSvc := walletModule.NewDBService(db)

	roundUC := usecase.NewRoundUseCase(rounds, settings, cache)
	betUC := usecase.NewBetUseCase(rounds, bets, walletSvc, cache)
	adminUC := usecase.NewAdminUseCase(rounds, settings)

	manager := ws.NewManager(ws.Config{
		PingInterval:   cfg.WebSocket.PingInterval,
		WriteWait:      cfg.WebSocket.WriteWait,
		PongWait:       cfg.WebSocket.PongWait,
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
	})
	go manager.Run()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fanout.NewSubscriber(rdb, manager).Run(ctx)

	handler := gatewayHttp.NewHandler(roundUC, betUC, adminUC, walletSvc, manager, cfg.JWT)
	router := gatewayHttp.NewRouter(handler)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	go func() {
		logger.InfoGlobal().Str("port", cfg.Server.Port).Msg("🌐 Gateway listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalGlobal().Err(err).Msg("Gateway server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.InfoGlobal().Msg("🛑 Shutting down gateway...")
	cancel()
	manager.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorGlobal().Err(err).Msg("Gateway shutdown failed")
	}
	logger.InfoGlobal().Msg("👋 Gateway stopped")
}
