package types

// LogLevel controls logger verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// DeploymentMode identifies which surface a process serves.
type DeploymentMode string

const (
	ModeAPI   DeploymentMode = "api"
	ModeLocal DeploymentMode = "local"
)
