package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/frankieli/dice_arena/internal/modules/game/domain"
	gamedb "github.com/frankieli/dice_arena/internal/modules/game/repository/db"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testRepos struct {
	rounds      *gamedb.RoundRepository
	bets        *gamedb.BetRepository
	settlements *gamedb.SettlementRepository
	settings    *gamedb.SettingsRepository
}

func newTestRepos(t *testing.T) testRepos {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&domain.GameRound{},
		&domain.Bet{},
		&domain.Settlement{},
		&domain.GameSetting{},
	))
	return testRepos{
		rounds:      gamedb.NewRoundRepository(db),
		bets:        gamedb.NewBetRepository(db),
		settlements: gamedb.NewSettlementRepository(db),
		settings:    gamedb.NewSettingsRepository(db),
	}
}

// fakeCache is an always-miss state cache so usecases under test fall back
// to the round row's clock.
type fakeCache struct{}

func (fakeCache) Write(ctx context.Context, snap *domain.Snapshot) error { return nil }
func (fakeCache) Read(ctx context.Context) (*domain.Snapshot, error)     { return nil, domain.ErrNoSnapshot }
func (fakeCache) Tick(ctx context.Context) (int, error)                  { return 0, domain.ErrNoSnapshot }
