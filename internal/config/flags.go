package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gophdesk/internal/flagx"
)

// parseFlags overlays cfg with -d, -s and -l. Other arguments are left for
// other parsers. It panics on malformed or negative values.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-s", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the SQLite database")
	maxAge := fs.Int("s", int(cfg.SessionMaxAge.Seconds()), "maximum session age (in seconds, 0 = unlimited)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if *maxAge < 0 {
		panic(fmt.Errorf("invalid maximum session age %d: must not be negative", *maxAge))
	}
	cfg.SessionMaxAge = time.Duration(*maxAge) * time.Second
}
