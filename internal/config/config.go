// Package config holds ambiscope's configuration.
//
// Defaults come from DefaultConfig. A JSON file, ~/.ambiscope/config.json
// unless told otherwise, overrides them, and command-line flags override
// the file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/npillmayer/schuko/tracing"

	"github.com/Mr-Dark-debug/ambiscope/internal/cursor"
	"github.com/Mr-Dark-debug/ambiscope/internal/database"
	"github.com/Mr-Dark-debug/ambiscope/internal/recorder"
)

// TraceKeys lists the tracer keys of every ambiscope package.
var TraceKeys = []string{
	"ambiscope.grammar",
	"ambiscope.cursor",
	"ambiscope.parsetree",
	"ambiscope.store",
	"ambiscope.recorder",
	"ambiscope.notify",
	"ambiscope.repl",
	"ambiscope.tui",
}

// Config holds the application configuration.
type Config struct {
	// DBPath is the SQLite database holding the catalog and walk history.
	DBPath string `json:"db_path"`

	// CatalogPath optionally names a JSON catalog. When set it is used
	// instead of the catalog stored in the database.
	CatalogPath string `json:"catalog_path,omitempty"`

	// RetreatPolicy is "journal" or "inferred".
	RetreatPolicy string `json:"retreat_policy"`

	// DefaultMode is the mode the TUI opens in: single, dual or practice.
	DefaultMode string `json:"default_mode"`

	// Record enables walk history.
	Record bool `json:"record"`

	// NotificationsEnabled sends a desktop notification when both
	// derivations are complete.
	NotificationsEnabled bool `json:"notifications_enabled,omitempty"`

	// TraceLevel is Debug, Info or Error.
	TraceLevel string `json:"trace_level"`

	RecordBatchSize int `json:"record_batch_size"`
	RecordFlushMs   int `json:"record_flush_ms"`

	mu       sync.RWMutex
	filePath string
}

// Dir returns the directory holding ambiscope's files.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ambiscope"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	dbPath := "ambiscope.db"
	if dir, err := Dir(); err == nil {
		dbPath = filepath.Join(dir, "ambiscope.db")
	}
	rc := recorder.DefaultConfig()
	return &Config{
		DBPath:          dbPath,
		RetreatPolicy:   cursor.RetreatJournal.String(),
		DefaultMode:     database.ModeDual,
		Record:          true,
		TraceLevel:      "Error",
		RecordBatchSize: rc.BatchSize,
		RecordFlushMs:   int(rc.FlushInterval / time.Millisecond),
	}
}

// Load reads the config file at path over the defaults. An empty path
// means DefaultPath. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := DefaultConfig()
	cfg.filePath = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that the config is internally consistent.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("empty db_path"))
	}
	if _, ok := cursor.ParseRetreatPolicy(c.RetreatPolicy); !ok {
		errs = append(errs, fmt.Errorf("unknown retreat_policy %q", c.RetreatPolicy))
	}
	switch c.DefaultMode {
	case database.ModeSingle, database.ModeDual, database.ModePractice:
	default:
		errs = append(errs, fmt.Errorf("unknown default_mode %q", c.DefaultMode))
	}
	switch strings.ToLower(c.TraceLevel) {
	case "debug", "info", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown trace_level %q", c.TraceLevel))
	}
	if c.RecordBatchSize < 0 || c.RecordFlushMs < 0 {
		errs = append(errs, errors.New("negative recorder settings"))
	}
	return errors.Join(errs...)
}

// Save writes the config to the file it was loaded from, or to
// DefaultPath.
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	path := c.filePath
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filePath
}

// Policy returns the parsed retreat policy. Unknown text falls back to
// the journal.
func (c *Config) Policy() cursor.RetreatPolicy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, _ := cursor.ParseRetreatPolicy(c.RetreatPolicy)
	return p
}

// Recorder returns the batching parameters for the history recorder.
func (c *Config) Recorder() recorder.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return recorder.Config{
		BatchSize:     c.RecordBatchSize,
		FlushInterval: time.Duration(c.RecordFlushMs) * time.Millisecond,
	}
}

// ApplyTraceLevel sets the configured level on every ambiscope tracer.
func (c *Config) ApplyTraceLevel() tracing.TraceLevel {
	c.mu.RLock()
	level := tracing.TraceLevelFromString(c.TraceLevel)
	c.mu.RUnlock()
	for _, key := range TraceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}
	return level
}
