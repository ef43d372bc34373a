// Package config loads guild and race settings from a .env file and
// environment variables. Environment variables always take precedence
// over .env file values. The loaded Config is passed by value into the
// services that need it; nothing reads process-wide state after startup.
package config

import (
	"log"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Time field names used for the primary/secondary leaderboard times.
const (
	TimeFieldIGT = "igt"
	TimeFieldRTA = "rta"
)

// DNFTime is the sentinel finish time recorded for a forfeit ("did not
// finish"). It parses as an ordinary maximal time, so it always sorts
// last among finishers; rendering it as "DNF" is the consumer's job.
const DNFTime = "23:59:59"

// DefaultCollectionRate is the placeholder collection rate recorded for
// submissions auto-created when a race is force-completed.
const DefaultCollectionRate = 216

// Config holds all application configuration.
type Config struct {
	// Server
	DBPath     string
	ListenAddr string
	LogLevel   string

	// Chat gateway. Announcements are skipped when the base URL is
	// empty or the announcements channel is zero.
	ChatBaseURL string
	ChatToken   string

	// RTAIsPrimary selects which of the two recorded times orders the
	// leaderboard. The other is the secondary time.
	RTAIsPrimary           bool
	ShowSecondaryTimeField bool
	SuggestNextMode        bool
	PingRaceCreatorOnEnd   bool

	// Guild info. Role and channel IDs are chat-platform snowflakes;
	// zero means the corresponding feature is disabled.
	RaceCreatorRoleID        int64
	RaceCreatorChannelID     int64
	BotCommandChannelIDs     []int64
	WeeklyCategoryID         int
	WeeklySubmitChannelID    int64
	WeeklyLeaderboardChannel int64
	AnnouncementsChannelID   int64
	WeeklyRacerRoleID        int64
	WeeklyRaceDoneRoleID     int64
}

// PrimaryTimeField returns the name of the configured primary time field.
func (c Config) PrimaryTimeField() string {
	if c.RTAIsPrimary {
		return TimeFieldRTA
	}
	return TimeFieldIGT
}

// IsWeeklyCategory reports whether the given category is the designated
// weekly category. Always false when weekly support is disabled.
func (c Config) IsWeeklyCategory(categoryID int) bool {
	return c.WeeklyCategoryID != 0 && categoryID == c.WeeklyCategoryID
}

// IsCommandChannel reports whether racer commands may be issued from
// the given channel. An empty allow list permits any channel.
func (c Config) IsCommandChannel(channelID int64) bool {
	if len(c.BotCommandChannelIDs) == 0 {
		return true
	}
	for _, id := range c.BotCommandChannelIDs {
		if id == channelID {
			return true
		}
	}
	return false
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() Config {
	// Silently load .env – OK if the file doesn't exist.
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("DB_PATH", "asyncrace.db")
	v.SetDefault("LISTEN_ADDR", ":8090")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RTA_IS_PRIMARY", false)
	v.SetDefault("SHOW_SECONDARY_TIME_FIELD", true)
	v.SetDefault("SUGGEST_NEXT_MODE", true)
	v.SetDefault("PING_RACE_CREATOR_ON_END", true)

	return Config{
		DBPath:     v.GetString("DB_PATH"),
		ListenAddr: v.GetString("LISTEN_ADDR"),
		LogLevel:   v.GetString("LOG_LEVEL"),

		ChatBaseURL: v.GetString("CHAT_BASE_URL"),
		ChatToken:   v.GetString("CHAT_TOKEN"),

		RTAIsPrimary:           v.GetBool("RTA_IS_PRIMARY"),
		ShowSecondaryTimeField: v.GetBool("SHOW_SECONDARY_TIME_FIELD"),
		SuggestNextMode:        v.GetBool("SUGGEST_NEXT_MODE"),
		PingRaceCreatorOnEnd:   v.GetBool("PING_RACE_CREATOR_ON_END"),

		RaceCreatorRoleID:        v.GetInt64("RACE_CREATOR_ROLE_ID"),
		RaceCreatorChannelID:     v.GetInt64("RACE_CREATOR_CHANNEL_ID"),
		BotCommandChannelIDs:     splitIDs(v.GetString("BOT_COMMAND_CHANNEL_IDS")),
		WeeklyCategoryID:         v.GetInt("WEEKLY_CATEGORY_ID"),
		WeeklySubmitChannelID:    v.GetInt64("WEEKLY_SUBMIT_CHANNEL_ID"),
		WeeklyLeaderboardChannel: v.GetInt64("WEEKLY_LEADERBOARD_CHANNEL_ID"),
		AnnouncementsChannelID:   v.GetInt64("ANNOUNCEMENTS_CHANNEL_ID"),
		WeeklyRacerRoleID:        v.GetInt64("WEEKLY_RACER_ROLE_ID"),
		WeeklyRaceDoneRoleID:     v.GetInt64("WEEKLY_RACE_DONE_ROLE_ID"),
	}
}

func splitIDs(s string) []int64 {
	var ids []int64
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
