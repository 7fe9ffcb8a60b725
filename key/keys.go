// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Player Process - these keys control how the external player binary is launched.
const (
	PlayerBinary           = "player.binary"
	PlayerArgs             = "player.args"
	PlayerVideoOutput      = "player.video_output"
	PlayerAudioOutput      = "player.audio_output"
	PlayerCacheSize        = "player.cache_size"
	PlayerFramedrop        = "player.framedrop"
	PlayerThreads          = "player.threads"
	PlayerFullscreen       = "player.fullscreen"
	PlayerSubtitleEncoding = "player.subtitle_encoding"
)

// Player Session - these keys are applied to a running session and survive restarts.
const (
	PlayerOSDLevel         = "player.osd_level"
	PlayerVolume           = "player.volume"
	PlayerScreenshotDir    = "player.screenshot_dir"
	PlayerTerminateTimeout = "player.terminate_timeout"
	PlayerUpdateStatistics = "player.update_statistics"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored = "cli.colored"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)
