package utils

// Application-wide names and messages.
const (
	// ApplicationName is the binary name used in help and configuration paths.
	ApplicationName = "ctxpack"
	// ConfigFileName is the local configuration file looked up in the working directory.
	ConfigFileName = ".ctxpack.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".ctxpack"
	// GlobalConfigFileName is the configuration file inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes the fatal error printed on exit.
	ApplicationExecutionFailedMessage = "ctxpack failed"
)
