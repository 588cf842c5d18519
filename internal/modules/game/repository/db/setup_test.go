package db

import (
	"fmt"
	"testing"

	gamedomain "github.com/frankieli/dice_arena/internal/modules/game/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&gamedomain.GameRound{},
		&gamedomain.Bet{},
		&gamedomain.Settlement{},
		&gamedomain.GameSetting{},
	))
	return db
}
