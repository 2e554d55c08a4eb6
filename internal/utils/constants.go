package utils

const (
	// ConfigFileName is the name of the ctxpick configuration file.
	ConfigFileName = "config.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding global configuration.
	GlobalConfigDirectoryName = ".ctxpick"
	// DefaultOutputFileName is the destination offered when concatenating without an explicit path.
	DefaultOutputFileName = "concatenated-code.txt"

	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes fatal command errors.
	ApplicationExecutionFailedMessage = "ctxpick failed"

	invalidLogLevelFormat = "invalid log level %q: %w"
)
