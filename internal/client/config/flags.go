package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/tripplanner/internal/flagx"
)

// parseFlags overlays cfg with command-line flags:
//
//	-a string     backend base url
//	-t duration   request timeout, e.g. 90s or 5m
//	-i int        online check interval in seconds
//	-d string     path of the local database file
//	-l string     log level (debug, info, warn, error)
//	-f string     log format (console, json)
//
// Other arguments are ignored so the config file flag can share the
// command line.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-i", "-d", "-l", "-f"})

	fs := flag.NewFlagSet("tripcli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "backend base url")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database file")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
		}
	})
	return nil
}
