package logger

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// New constructs a logger with the provided level. The logger is an injected
// collaborator: components receive it through their constructors rather than
// reaching for package-level state, and the caller owns its lifecycle
// (Sync on shutdown).
func New(level string) *Logger {
	return newZapLogger(level)
}
