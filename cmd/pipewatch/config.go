package main

// Flag names for Viper binding
const (
	// Global flags
	FlagVerbose = "verbose"
	FlagConfig  = "config"
	FlagLogFile = "log-file"

	// Watch command flags
	FlagSnapshotURL      = "snapshot-url"
	FlagStreamURL        = "stream-url"
	FlagPollInterval     = "poll-interval"
	FlagPrefsFile        = "prefs-file"
	FlagAssistantEnabled = "assistant-enabled"
	FlagAssistantURL     = "assistant-url"
)
