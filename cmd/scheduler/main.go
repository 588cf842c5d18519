package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof" // Register pprof handlers
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frankieli/dice_arena/internal/config"
	gamedomain "github.com/frankieli/dice_arena/internal/modules/game/domain"
	gamedb "github.com/frankieli/dice_arena/internal/modules/game/repository/db"
	gameredis "github.com/frankieli/dice_arena/internal/modules/game/repository/redis"
	"github.com/frankieli/dice_arena/internal/modules/game/scheduler"
	"github.com/frankieli/dice_arena/internal/modules/game/usecase"
	walletModule "github.com/frankieli/dice_arena/internal/modules/wallet"
	"github.com/frankieli/dice_arena/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	pprofPort := flag.String("pprof-port", "", "Port to run pprof server on (e.g., 6060)")
	background := flag.Bool("d", false, "Run in background mode (disable console logging)")
	standalone := flag.Bool("standalone", false, "Run without the shared event gate (single-process deployments)")
	flag.Parse()

	godotenv.Load()
	cfg := config.LoadSchedulerConfig()

	logger.InitWithFile("logs/dice_arena/scheduler.log", cfg.LogLevel, "json", !*background)
	defer logger.Flush()

	if *pprofPort != "" {
		go func() {
			addr := "localhost:" + *pprofPort
			logger.InfoGlobal().Str("addr", addr).Msg("📈 Starting pprof server")
			if err := http.ListenAndServe(addr, nil); err != nil {
				logger.ErrorGlobal().Err(err).Msg("Failed to start pprof server")
			}
		}()
	}

	fmt.Println("🎲 Starting dice round scheduler... Logs are written to logs/dice_arena/scheduler.log (rotating)")

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
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)
	defer sqlDB.Close()

	if err := db.AutoMigrate(
		&gamedomain.GameRound{},
		&gamedomain.Bet{},
		&gamedomain.Settlement{},
		&gamedomain.GameSetting{},
		&walletModule.Wallet{},
		&walletModule.Transaction{},
	); err != nil {
		logger.FatalGlobal().Err(err).Msg("Database migration failed")
	}
	logger.InfoGlobal().Msg("✅ Database connected")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer rdb.Close()

	rounds := gamedb.NewRoundRepository(db)
	bets := gamedb.NewBetRepository(db)
	settlements := gamedb.NewSettlementRepository(db)
	settings := gamedb.NewSettingsRepository(db)
	walletSvc := walletModule.NewDBService(db)
	payouts := usecase.NewPayoutUseCase(rounds, bets, settlements, walletSvc)

	var gate gamedomain.EventGate
	if !*standalone {
		gate = gameredis.NewEventGate(rdb)
	}

	engine := scheduler.New(scheduler.Config{
		Rounds:      rounds,
		Settings:    settings,
		Payouts:     payouts,
		Gate:        gate,
		Cache:       gameredis.NewStateCache(rdb),
		Publisher:   gameredis.NewPublisher(rdb),
		Coordinated: !*standalone,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		engine.Run(ctx)
		close(done)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.InfoGlobal().Msg("🛑 Shutting down scheduler...")
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		logger.WarnGlobal().Msg("Scheduler did not stop in time, exiting anyway")
	}
	logger.InfoGlobal().Msg("👋 Scheduler stopped")
}
