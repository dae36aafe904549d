package constants

import "time"

const (
	AppName            = "missionctl"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/missionctl/missionctl.db"
	Version            = "v0.1.0"

	// DateFormat is the calendar-day key format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the clock format used in CLI output (HH:MM)
	TimeFormat = "15:04"

	// SnapshotKey is the key-value entry holding the whole engine state
	SnapshotKey = "habit-storage"

	// SnapshotVersion is written into every persisted envelope
	SnapshotVersion = 1

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "missionctl-"
	BackupFileSuffix = ".json"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "missionctl-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.missionctl"
)
