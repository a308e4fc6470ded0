package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophdesk/internal/flagx"
	"github.com/dmitrijs2005/gophdesk/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields tell an
// absent key apart from a zero value, so a partial file only overrides what it
// names.
type JsonConfig struct {
	DatabasePath  *string         `json:"database_path"`
	SessionMaxAge *timex.Duration `json:"session_max_age"`
	LogLevel      *string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c/-config. It panics when
// the file cannot be read or decoded, or holds a negative session age.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.SessionMaxAge != nil {
		if jc.SessionMaxAge.Duration < 0 {
			panic(fmt.Errorf("invalid session_max_age %s: must not be negative", jc.SessionMaxAge.Duration))
		}
		cfg.SessionMaxAge = jc.SessionMaxAge.Duration
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
}
