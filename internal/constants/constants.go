package constants

import "time"

// Topic names are shared wire contracts between the three services and must
// match exactly on every side. They are deliberately not configurable.
const (
	TopicChatToModerator = "chat.to.moderator"
	TopicModeratorToChat = "moderator.to.chat"
	TopicChatToLogs      = "chat.to.logs"
)

// RedactionMessage replaces the content of a censored message.
const RedactionMessage = "This message has been censored."

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	CacheKeyPrefixAudit = "audit:"
)

const (
	BroadcastChannelPrefix = "chat.events."
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

const (
	DefaultTTLSeconds = 3600
)

const (
	FallbackAllow = "allow"
	FallbackDeny  = "deny"
)
