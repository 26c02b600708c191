// Package config loads the node's TOML configuration file, grounded in the
// reference node's cmd/berith/config.go: a toml.Config with field names kept
// identical to Go struct field names, wrapping the decoder's line-numbered
// errors with the offending file name.
package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"reflect"
	"time"
	"unicode"

	"github.com/naoina/toml"

	"github.com/berith-foundation/posnode/miner"
)

// tomlSettings matches key lookups verbatim to struct field names instead of
// toml's default snake_case folding, exactly as the reference node sets up
// its decoder.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		link := ""
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see godoc for %s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// Network groups the node's peer-networking settings: its listen address and
// peer limit. The forging/broadcast quorum is miner.Config.QuorumSize.
type Network struct {
	ListenAddr string
	MaxPeers   int
}

// Config is the root configuration document, analogous to the reference
// node's berConfig{Ber, Node, BerithStats}.
type Config struct {
	Miner   miner.Config
	Network Network

	// StashTimeout bounds how long the status tracker waits in
	// TransientResolving before forcing a resync.
	StashTimeout time.Duration
}

// Default returns a Config seeded with miner.DefaultConfig and reasonable
// network/tracker defaults.
func Default() Config {
	return Config{
		Miner: miner.DefaultConfig,
		Network: Network{
			ListenAddr: ":30900",
			MaxPeers:   25,
		},
		StashTimeout: 30 * time.Second,
	}
}

// Load reads and decodes a TOML file into cfg, which should first be seeded
// with Default() so unset fields keep their defaults.
func Load(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	if _, ok := err.(*toml.LineError); ok {
		err = fmt.Errorf("%s, %w", file, err)
	}
	return err
}

// Encode renders cfg back out as TOML, for the dumpconfig CLI command.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := tomlSettings.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
