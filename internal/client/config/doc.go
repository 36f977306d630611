// Package config loads runtime configuration for the taskflow CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. TASKFLOW_* environment variables.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   backend base URL, including the /api prefix
//	-d string   path of the local SQLite database
//	-s string   credential storage backend: sqlite or redis
//	-r string   redis address (host:port)
//	-i int      online status check interval (seconds)
//	-l string   log level
//	-f string   log format: console, json or text
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "server_base_url": "http://localhost:8080/api",
//	  "database_path": "taskflow.db",
//	  "storage_backend": "sqlite",
//	  "redis_addr": "localhost:6379",
//	  "redis_db": 0,
//	  "callback_addr": "localhost:3000",
//	  "request_timeout": "10s",
//	  "online_check_interval": "3s",
//	  "cache_ttl": "5m",
//	  "cache_max_size": 500,
//	  "log_level": "info",
//	  "log_format": "console"
//	}
//
// Keys missing from the file keep their previous value.
package config
