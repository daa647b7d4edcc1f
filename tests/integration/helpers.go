package integration

import (
	"time"

	"chatline/internal/config"
	"chatline/internal/constants"
	"chatline/internal/logger"
	"chatline/internal/moderation"
)

const (
	containerStartupTimeout = 60
	timestampDelay          = 10 * time.Millisecond
)

func createTestLogger() logger.Logger {
	return logger.NopLogger()
}

func createTestModerationConfig() config.ModerationConfig {
	return config.ModerationConfig{
		Reload: config.ReloadConfig{
			IntervalSeconds: 60,
		},
	}
}

func createTestIdempotencyConfig() config.IdempotencyConfig {
	return config.IdempotencyConfig{
		Enabled:       true,
		HashAlgorithm: "md5",
		TTLSeconds:    300,
		OnRedisError:  constants.FallbackAllow,
	}
}

func createTestRecord(messageID int64, content string, terms []string) moderation.Record {
	return moderation.Record{
		MessageID:      messageID,
		GroupID:        1,
		SenderID:       42,
		SenderUsername: "alice",
		Content:        content,
		InvalidTerms:   terms,
	}
}
