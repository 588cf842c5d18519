package domain

import "time"

// Keys in the game_settings table. Duration values are whole seconds.
const (
	SettingBettingCloseTime = "BETTING_CLOSE_TIME"
	SettingDiceRollTime     = "DICE_ROLL_TIME"
	SettingDiceResultTime   = "DICE_RESULT_TIME"
	SettingRoundEndTime     = "ROUND_END_TIME"
	SettingDiceMode         = "dice_mode"
)

// Dice modes. Manual mode lets an admin pre-set faces; the scheduler still
// auto-rolls at the cutoff if none were set.
const (
	DiceModeRandom = "random"
	DiceModeManual = "manual"
)

// GameSetting is a live-editable configuration row. The scheduler re-reads
// duration settings every iteration so changes apply without a restart.
type GameSetting struct {
	Key         string    `gorm:"primaryKey;type:varchar(50)" json:"key"`
	Value       string    `gorm:"type:text;not null" json:"value"`
	Description string    `gorm:"type:text" json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (GameSetting) TableName() string {
	return "game_settings"
}
