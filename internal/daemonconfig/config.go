// Package daemonconfig holds the daemon's startup configuration: everything main needs to
// construct the core components and their collaborators, sourced from flags with
// environment-variable overrides for container deployment.
package daemonconfig

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the fully-resolved set of daemon settings.
type Config struct {
	// HTTPAddr is the address the HTTP surface listens on.
	HTTPAddr string
	// IdentityPath is where the libp2p peer identity is persisted across restarts.
	IdentityPath string
	// ListenAddrs are the libp2p multiaddrs the overlay host listens on.
	ListenAddrs []string
	// LogFormat selects the slog handler: "text" or "json".
	LogFormat string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// FilterSize is parsed from -filter-size / SEARCHD_FILTER_SIZE but is not applied: the
	// Filter always uses filter.Size bits.
	FilterSize int
	// SearchParkSweepInterval is how often the park's sweeper checks for expired entries.
	// Zero disables the sweeper.
	SearchParkSweepInterval time.Duration
	// RankerTargetLanguage is the default language preference applied when a query omits
	// one.
	RankerTargetLanguage string
}

// Default returns the built-in defaults before flags or environment overrides are applied.
func Default() Config {
	return Config{
		HTTPAddr:                ":8080",
		IdentityPath:            "searchd_identity.json",
		LogFormat:               "text",
		LogLevel:                "info",
		FilterSize:              125_000,
		SearchParkSweepInterval: 30 * time.Second,
		RankerTargetLanguage:    "en",
	}
}

// Parse builds a Config from args (typically os.Args[1:]), applying environment variable
// overrides for any flag left at its default. Flags take precedence over environment
// variables when both are set explicitly.
func Parse(args []string) (Config, error) {
	cfg := Default()
	applyEnvOverrides(&cfg)

	fs := flag.NewFlagSet("searchd", flag.ContinueOnError)
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "address for the HTTP surface to listen on")
	fs.StringVar(&cfg.IdentityPath, "identity-path", cfg.IdentityPath, "path to persist the peer identity")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log handler: text or json")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.IntVar(&cfg.FilterSize, "filter-size", cfg.FilterSize, "membership filter bit-array width")
	fs.DurationVar(&cfg.SearchParkSweepInterval, "park-sweep-interval", cfg.SearchParkSweepInterval, "search park sweeper interval, 0 to disable")
	fs.StringVar(&cfg.RankerTargetLanguage, "default-language", cfg.RankerTargetLanguage, "default ranker language preference")
	var listenAddrs stringListFlag
	fs.Var(&listenAddrs, "listen-addr", "libp2p listen multiaddr (repeatable)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if len(listenAddrs) > 0 {
		cfg.ListenAddrs = listenAddrs
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("SEARCHD_HTTP_ADDR"); ok {
		cfg.HTTPAddr = v
	}
	if v, ok := os.LookupEnv("SEARCHD_IDENTITY_PATH"); ok {
		cfg.IdentityPath = v
	}
	if v, ok := os.LookupEnv("SEARCHD_LOG_FORMAT"); ok {
		cfg.LogFormat = v
	}
	if v, ok := os.LookupEnv("SEARCHD_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("SEARCHD_FILTER_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FilterSize = n
		}
	}
	if v, ok := os.LookupEnv("SEARCHD_PARK_SWEEP_INTERVAL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SearchParkSweepInterval = d
		}
	}
	if v, ok := os.LookupEnv("SEARCHD_DEFAULT_LANGUAGE"); ok {
		cfg.RankerTargetLanguage = v
	}
}

// stringListFlag accumulates repeated -listen-addr flags into a slice.
type stringListFlag []string

func (s *stringListFlag) String() string {
	return fmt.Sprint([]string(*s))
}

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}
