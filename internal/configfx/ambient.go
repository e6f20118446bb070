package configfx

const (
	ConfigLogLevel      = "log.level"
	ConfigLogFormat     = "log.format"
	ConfigLogFile       = "log.file"
	ConfigLogMaxSizeMB  = "log.max_size_mb"
	ConfigLogMaxBackups = "log.max_backups"
	ConfigLogMaxAgeDays = "log.max_age_days"

	ConfigDatabaseDSN  = "database.dsn"
	ConfigDatabaseName = "database.name"

	ConfigDockerHost    = "docker.host"
	ConfigDockerVersion = "docker.version"

	ConfigServerAddress      = "server.address"
	ConfigServerTimeoutRead  = "server.timeout.read"
	ConfigServerTimeoutWrite = "server.timeout.write"
	ConfigServerLogRequests  = "server.log.requests"
)
