// Package config reads process settings from flags, with defaults taken from
// the environment.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"chanrelay/internal/relay"
)

type Config struct {
	Addr           string
	Debug          bool
	OutboxSize     int
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	AllowedOrigins []string
}

// Load parses args (without the program name). Environment variables supply
// the defaults, flags override them.
func Load(args []string) (Config, error) {
	return load(args, os.Getenv)
}

func load(args []string, getenv func(string) string) (Config, error) {
	defaults, err := fromEnv(getenv)
	if err != nil {
		return Config{}, err
	}

	conf := Config{}
	var origins string
	fs := flag.NewFlagSet("relay", flag.ContinueOnError)
	fs.StringVar(&conf.Addr, "addr", defaults.Addr, "http listen address")
	fs.BoolVar(&conf.Debug, "debug", defaults.Debug, "verbose debug logging")
	fs.IntVar(&conf.OutboxSize, "outbox", defaults.OutboxSize, "events buffered per connection before it is dropped")
	fs.DurationVar(&conf.WriteTimeout, "write-timeout", defaults.WriteTimeout, "deadline for writing one frame (0 = none)")
	fs.DurationVar(&conf.PingInterval, "ping-interval", defaults.PingInterval, "websocket keepalive ping period (0 = off)")
	fs.StringVar(&origins, "allowed-origins", strings.Join(defaults.AllowedOrigins, ","), "comma separated websocket origins (empty = any)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	conf.AllowedOrigins = splitList(origins)

	if conf.OutboxSize < 1 {
		return Config{}, fmt.Errorf("outbox must be at least 1, got %d", conf.OutboxSize)
	}
	if conf.WriteTimeout < 0 || conf.PingInterval < 0 {
		return Config{}, fmt.Errorf("durations must not be negative")
	}
	return conf, nil
}

func fromEnv(getenv func(string) string) (Config, error) {
	conf := Config{
		Addr:         ":8080",
		Debug:        getenv("DEBUG") == "debug",
		OutboxSize:   relay.DefaultOutboxSize,
		WriteTimeout: relay.DefaultWriteTimeout,
		PingInterval: relay.DefaultPingInterval,
	}
	if port := strings.TrimSpace(getenv("PORT")); port != "" {
		conf.Addr = ":" + port
	}
	if v := strings.TrimSpace(getenv("RELAY_OUTBOX_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("RELAY_OUTBOX_SIZE: %w", err)
		}
		conf.OutboxSize = n
	}
	if v := strings.TrimSpace(getenv("RELAY_WRITE_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("RELAY_WRITE_TIMEOUT: %w", err)
		}
		conf.WriteTimeout = d
	}
	if v := strings.TrimSpace(getenv("RELAY_PING_INTERVAL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("RELAY_PING_INTERVAL: %w", err)
		}
		conf.PingInterval = d
	}
	conf.AllowedOrigins = splitList(getenv("RELAY_ALLOWED_ORIGINS"))
	return conf, nil
}

// RegistryOptions translates the config into relay registry options.
func (c Config) RegistryOptions() []relay.Option {
	return []relay.Option{
		relay.WithOutboxSize(c.OutboxSize),
		relay.WithWriteTimeout(c.WriteTimeout),
		relay.WithPingInterval(c.PingInterval),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
