// Package config loads and validates the startup configuration document
// (§6.4): a single JSON file describing sources, targets, and global
// verbosity knobs. Missing top-level fields are fatal (§7 taxonomy #6),
// matching the teacher's own metadata load/save pattern in
// internal/storage/manager/manager.go: plain encoding/json, errors
// wrapped with fmt.Errorf, never a panic.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// CoreProtocolVersion is checked against Config.Version at Load time.
const CoreProtocolVersion = 1

// Source describes one Oracle redo source (§6.4). The Oracle-side
// connection itself is out of scope (§1 Non-goals); this struct only
// carries what the core needs to label and catalog a source's tables.
type Source struct {
	Type       string   `json:"type"`
	Alias      string   `json:"alias"`
	Name       string   `json:"name"`
	User       string   `json:"user"`
	Password   string   `json:"password"`
	Server     string   `json:"server"`
	EventTable string   `json:"eventtable"`
	Tables     []string `json:"tables"`
}

// Target describes one downstream sink (§6.4).
type Target struct {
	Type    string `json:"type"`
	Alias   string `json:"alias"`
	Brokers string `json:"brokers"`
	Topic   string `json:"topic"`
	Source  string `json:"source"`
	Trace   int    `json:"trace"`
}

// Config is the top-level configuration document (§6.4).
type Config struct {
	Version     int      `json:"version"`
	DumpLogFile int      `json:"dumplogfile"`
	Trace       int      `json:"trace"`
	DumpData    bool     `json:"dumpdata"`
	DirectRead  bool     `json:"directread"`
	SortCols    int      `json:"sortcols"`
	Sources     []Source `json:"sources"`
	Targets     []Target `json:"targets"`
}

// Load reads and validates the JSON document at path. Any error
// (missing file, malformed JSON, missing required field, version
// mismatch) is returned rather than panicking; cmd/logminer treats it
// as fatal (§6.4, §7 taxonomy #6).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	for _, name := range []string{"dumplogfile", "trace", "dumpdata", "directread", "sortcols"} {
		if _, ok := fields[name]; !ok {
			return nil, fmt.Errorf("config: %s: missing required field: %s", path, name)
		}
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Version == 0 {
		return fmt.Errorf("missing required field: version")
	}
	if c.Version != CoreProtocolVersion {
		return fmt.Errorf("unsupported protocol version %d, core requires %d", c.Version, CoreProtocolVersion)
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("missing required field: sources")
	}
	for i, s := range c.Sources {
		if s.Alias == "" {
			return fmt.Errorf("sources[%d]: missing required field: alias", i)
		}
		if s.Type != "ORACLE" {
			return fmt.Errorf("sources[%d]: unsupported type %q", i, s.Type)
		}
	}
	if len(c.Targets) == 0 {
		return fmt.Errorf("missing required field: targets")
	}
	for i, t := range c.Targets {
		if t.Alias == "" {
			return fmt.Errorf("targets[%d]: missing required field: alias", i)
		}
		if t.Type != "KAFKA" {
			return fmt.Errorf("targets[%d]: unsupported type %q", i, t.Type)
		}
	}
	return nil
}
