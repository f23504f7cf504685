package config

import (
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"os"
	"sync"
)

var once sync.Once

func InitConfig() {
	once.Do(func() {
		_ = godotenv.Load()

		viper.AutomaticEnv()

		viper.BindEnv("bot_token", "BOT_TOKEN")
		viper.BindEnv("target_channel_id", "TARGET_CHANNEL_ID")
		viper.BindEnv("enable_channel_source", "ENABLE_CHANNEL_SOURCE")
		viper.BindEnv("source_channel_id", "SOURCE_CHANNEL_ID")
		viper.BindEnv("enable_sheet_source", "ENABLE_SHEET_SOURCE")
		viper.BindEnv("spreadsheet_id", "SPREADSHEET_ID")
		viper.BindEnv("google_credentials_file", "GOOGLE_CREDENTIALS_FILE")
		viper.BindEnv("channel_poll_interval", "CHANNEL_POLL_INTERVAL")
		viper.BindEnv("sheet_poll_interval", "SHEET_POLL_INTERVAL")
		viper.BindEnv("markup_channel", "MARKUP_CHANNEL")
		viper.BindEnv("markup_sheet", "MARKUP_SHEET")
		viper.BindEnv("price_column", "PRICE_COLUMN")
		viper.BindEnv("header_row", "HEADER_ROW")
		viper.BindEnv("channel_skip_duplicates", "CHANNEL_SKIP_DUPLICATES")
		viper.BindEnv("process_recent_on_start", "PROCESS_RECENT_ON_START")
		viper.BindEnv("process_recent_limit", "PROCESS_RECENT_LIMIT")
		viper.BindEnv("db_path", "DB_PATH")
		viper.BindEnv("archive_dir", "ARCHIVE_DIR")
		viper.BindEnv("archive_retention_days", "ARCHIVE_RETENTION_DAYS")
		viper.BindEnv("metrics_port", "METRICS_PORT")
		viper.BindEnv("log_file", "LOG_FILE")
		viper.BindEnv("debug", "DEBUG")
		viper.BindEnv("lang", "LANG")

		viper.SetDefault("enable_channel_source", true)
		viper.SetDefault("enable_sheet_source", false)
		viper.SetDefault("google_credentials_file", "credentials.json")
		viper.SetDefault("channel_poll_interval", 60)
		viper.SetDefault("sheet_poll_interval", 300)
		viper.SetDefault("markup_channel", 200)
		viper.SetDefault("markup_sheet", 50)
		viper.SetDefault("price_column", 4)
		viper.SetDefault("header_row", 5)
		viper.SetDefault("channel_skip_duplicates", false)
		viper.SetDefault("process_recent_on_start", false)
		viper.SetDefault("process_recent_limit", 10)
		viper.SetDefault("db_path", "./data/pricebot.db")
		viper.SetDefault("archive_retention_days", 7)
		viper.SetDefault("metrics_port", 9090)
		viper.SetDefault("debug", false)
		viper.SetDefault("lang", "en")
	})
}

func GetString(key string) string {
	InitConfig()
	return viper.GetString(key)
}

func GetInt(key string) int {
	InitConfig()
	return viper.GetInt(key)
}

func GetInt64(key string) int64 {
	InitConfig()
	return viper.GetInt64(key)
}

func GetFloat64(key string) float64 {
	InitConfig()
	return viper.GetFloat64(key)
}

func GetBool(key string) bool {
	InitConfig()
	return viper.GetBool(key)
}

// Validate fails fast on missing or inconsistent startup configuration.
func Validate() error {
	InitConfig()

	if GetString("bot_token") == "" {
		return errors.New("BOT_TOKEN is required")
	}
	if GetString("target_channel_id") == "" {
		return errors.New("TARGET_CHANNEL_ID is required")
	}

	channelEnabled := GetBool("enable_channel_source")
	sheetEnabled := GetBool("enable_sheet_source")
	if !channelEnabled && !sheetEnabled {
		return errors.New("at least one source must be enabled (ENABLE_CHANNEL_SOURCE, ENABLE_SHEET_SOURCE)")
	}

	if channelEnabled && GetInt64("source_channel_id") == 0 {
		return errors.New("SOURCE_CHANNEL_ID is required when the channel source is enabled")
	}

	if sheetEnabled {
		if GetString("spreadsheet_id") == "" {
			return errors.New("SPREADSHEET_ID is required when the sheet source is enabled")
		}
		credentials := GetString("google_credentials_file")
		if _, err := os.Stat(credentials); err != nil {
			return errors.Wrapf(err, "google credentials file %s is not readable", credentials)
		}
	}

	if GetInt("channel_poll_interval") <= 0 || GetInt("sheet_poll_interval") <= 0 {
		return errors.New("poll intervals must be positive")
	}

	return nil
}
