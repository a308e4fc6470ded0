// Package config loads runtime configuration for the gophdesk CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config (see parseJson).
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   path of the SQLite database holding credentials and user data
//	-s int      maximum session age in seconds (0 = until the client exits)
//	-l string   log level: debug, info, warn, error
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "12h" or integer
// nanoseconds:
//
//	{
//	  "database_path": "data/gophdesk.db",
//	  "session_max_age": "12h",
//	  "log_level": "info"
//	}
package config
