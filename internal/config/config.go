// Package config loads and validates a node's TOML configuration, in the
// style of cmd/berith/config.go's toml.Config-based loader.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"

	"github.com/LogosNetwork/logos-core-sub004/pkg/consensustype"
)

// tomlSettings mirrors cmd/berith/config.go's: TOML keys use the same
// names as the Go struct fields, and an undeclared field is an error
// rather than silently ignored.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		link := ""
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// NodeConfig is the subset of §4/§5/§6 that a delegate's process needs at
// startup.
type NodeConfig struct {
	DataDir       string
	DelegateIndex uint8
	KeystorePath  string
	LogLevel      string `toml:",omitempty"`
	LogFile       string `toml:",omitempty"`
}

// NetworkConfig names the three listener ports of §6: "Bootstrap TCP port:
// default 7000. Consensus TCP port: configured per delegate. TxAcceptor:
// port pair (bin, json) configured per delegate."
type NetworkConfig struct {
	BootstrapPort     int `toml:",omitempty"`
	ConsensusPort     int
	TxAcceptorBinPort int
	TxAcceptorJSONPort int
	Peers             []string `toml:",omitempty"`
}

// DefaultBootstrapPort is §6's stated default.
const DefaultBootstrapPort = 7000

// Config is the top-level TOML document: one [Node] and one [Network]
// table, mirroring berConfig's {Ber, Node, BerithStats} shape.
type Config struct {
	Node    NodeConfig
	Network NetworkConfig
}

// DefaultConfig returns a Config with the documented port default and an
// empty data directory (the caller fills DataDir/DelegateIndex/KeystorePath).
func DefaultConfig() Config {
	return Config{
		Network: NetworkConfig{BootstrapPort: DefaultBootstrapPort},
	}
}

// Load reads and decodes a TOML config file on top of DefaultConfig.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg)
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(path + ", " + err.Error())
	}
	return cfg, err
}

// Dump writes cfg back out as TOML, the way dumpConfig does for diagnosis.
func Dump(w io.Writer, cfg Config) error {
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// ErrDelegateIndexOutOfRange is returned by Validate when DelegateIndex
// does not name a seat in the fixed 32-delegate committee.
var ErrDelegateIndexOutOfRange = errors.New("config: delegate index out of range")

// Validate checks the invariants Load cannot express in TOML alone.
func (c Config) Validate() error {
	if c.Node.DelegateIndex >= consensustype.DelegateCount {
		return ErrDelegateIndexOutOfRange
	}
	if c.Node.DataDir == "" {
		return errors.New("config: data directory is required")
	}
	if c.Network.ConsensusPort == 0 {
		return errors.New("config: consensus port is required")
	}
	if c.Network.BootstrapPort == 0 {
		return errors.New("config: bootstrap port is required")
	}
	return nil
}
