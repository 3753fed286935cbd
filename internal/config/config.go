// Package config reads server and client settings from flags, falling back
// to CHESS_* environment variables and then to defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

type Config struct {
	Addr              string
	AllowedOrigins    []string
	ServerURL         string // websocket URL template, %s is the game id
	ReconnectAttempts int
	ReconnectDelay    time.Duration
	LogLevel          log.Level
}

// Load parses args (without the program name). Flags beat environment
// variables, which beat defaults.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("chess", flag.ContinueOnError)

	attempts, err := getenvInt("CHESS_RECONNECT_ATTEMPTS", 10)
	if err != nil {
		return Config{}, err
	}
	delay, err := getenvDuration("CHESS_RECONNECT_DELAY", 30*time.Second)
	if err != nil {
		return Config{}, err
	}

	addr := fs.String("addr", getenv("CHESS_ADDR", ":3000"), "listen address")
	origins := fs.String("origins", getenv("CHESS_ALLOWED_ORIGINS", "http://localhost:5173"), "comma-separated origins allowed for CORS and websockets")
	serverURL := fs.String("server-url", getenv("CHESS_SERVER_URL", "ws://localhost:3000/ws/game/%s"), "websocket URL template for clients")
	reconnectAttempts := fs.Int("reconnect-attempts", attempts, "client reconnect attempts before giving up")
	reconnectDelay := fs.Duration("reconnect-delay", delay, "client delay between reconnect attempts")
	level := fs.String("log-level", getenv("CHESS_LOG_LEVEL", "info"), "trace, debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	lvl, err := ParseLevel(*level)
	if err != nil {
		return Config{}, err
	}
	if *reconnectAttempts < 0 {
		return Config{}, fmt.Errorf("reconnect-attempts must not be negative, got %d", *reconnectAttempts)
	}

	return Config{
		Addr:              *addr,
		AllowedOrigins:    splitCSV(*origins),
		ServerURL:         *serverURL,
		ReconnectAttempts: *reconnectAttempts,
		ReconnectDelay:    *reconnectDelay,
		LogLevel:          lvl,
	}, nil
}

// GameURL fills the game id into the server URL template.
func (c Config) GameURL(gameID string) string {
	if !strings.Contains(c.ServerURL, "%s") {
		return strings.TrimRight(c.ServerURL, "/") + "/" + gameID
	}
	return fmt.Sprintf(c.ServerURL, gameID)
}

func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info", "":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	}
	return log.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
