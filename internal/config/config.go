// Package config loads the shared TOML configuration for both cmd/ entry
// points.
package config

import (
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the shared on-disk configuration for camahjucunu-dsl and
// camahjucunu-ws. A CLI entry point loads one of these, then overrides its
// fields with any flags the caller supplied.
type Config struct {
	// DSL holds the decoder-side settings (camahjucunu-dsl).
	DSL struct {
		GrammarFile     string `toml:"grammar_file"`
		InstructionFile string `toml:"instruction_file"`
		Decoder         string `toml:"decoder"`
	} `toml:"dsl"`

	// WS holds the session-manager settings (camahjucunu-ws).
	WS struct {
		URL                string        `toml:"url"`
		ConnectTimeout     time.Duration `toml:"connect_timeout"`
		ReceiveBufferSize  int           `toml:"receive_buffer_size"`
		AwaitTimeout       time.Duration `toml:"await_timeout"`
		IdentityCatalogLen int           `toml:"identity_catalog_size"`
	} `toml:"ws"`
}

// Default returns the baseline configuration applied before a file or flags
// are layered on top.
func Default() Config {
	var c Config
	c.WS.ConnectTimeout = 10 * time.Second
	c.WS.ReceiveBufferSize = 1 << 20
	c.WS.AwaitTimeout = 5 * time.Second
	c.WS.IdentityCatalogLen = 16
	c.DSL.Decoder = "table"
	return c
}

// Load reads and decodes a TOML configuration file, starting from Default.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	_, err := toml.DecodeFile(path, &c)
	return c, err
}
