package commands

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/ccollicutt/powerdump/internal/logger"
	"github.com/ccollicutt/powerdump/pkg/config"
)

// Keys of the root-level options. Each is bound to a persistent flag of the
// same name and to POWERDUMP_<KEY> in the environment.
const (
	KeyConfig  = "config"
	KeyVerbose = "verbose"
	KeyDebug   = "debug"
)

// EnvPrefix is the environment prefix for root-level options.
const EnvPrefix = "POWERDUMP"

// Globals exposes the root-level options shared by every command.
type Globals struct {
	v *viper.Viper
}

// NewGlobals wraps a viper instance holding the root-level options.
func NewGlobals(v *viper.Viper) *Globals {
	return &Globals{v: v}
}

// ConfigPath returns the configuration file path, empty for defaults.
func (g *Globals) ConfigPath() string {
	return g.v.GetString(KeyConfig)
}

// Verbose reports whether progress messages are enabled.
func (g *Globals) Verbose() bool {
	return g.v.GetBool(KeyVerbose)
}

// Debug reports whether diagnostic messages are enabled.
func (g *Globals) Debug() bool {
	return g.v.GetBool(KeyDebug)
}

// Logger returns a console logger at the level selected by the flags.
func (g *Globals) Logger(w io.Writer) zerolog.Logger {
	return logger.New(w, g.Debug(), g.Verbose())
}

// LoadConfig loads the selected configuration, or the defaults.
func (g *Globals) LoadConfig(ctx context.Context) (*config.Config, error) {
	return config.Load(ctx, g.ConfigPath())
}
