package constants

import "time"

const (
	AppName          = "soulsync"
	DefaultStorePath = "~/.config/soulsync/users.json"
	Version          = "v0.3.0"

	// DateFormat is the calendar date format used for due dates and legacy entries (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the wall-clock format of the legacy mood "time" field (HH:MM:SS)
	TimeFormat = "15:04:05"

	// TimestampFormat is the layout new entries are stamped with (local time, microseconds)
	TimestampFormat = "2006-01-02T15:04:05.000000"

	// DisplayFormat is how resolved timestamps are shown in history views
	DisplayFormat = "2006-01-02 15:04"

	// Keyring entries
	KeyringAPIKeyUser  = "groq-api-key"
	KeyringSessionUser = "session-user"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "soulsync-"

	// Assistant constants
	APIKeyEnv              = "GROQ_API_KEY"
	DefaultBaseURL         = "https://api.groq.com/openai/v1"
	DefaultChatModel       = "llama-3.1-8b-instant"
	DefaultReflectionModel = "llama-3.3-70b-versatile"
	ChatWindow             = 5
	RecentJournalCount     = 3
	ChatMaxTokens          = 540
	ReflectionMaxTokens    = 150
	Temperature            = 0.7
	DefaultAITimeout       = 60 * time.Second

	// History view defaults
	DefaultMoodHistoryCount    = 10
	DefaultJournalHistoryCount = 5
)
