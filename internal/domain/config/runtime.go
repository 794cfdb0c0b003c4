package config

import "path/filepath"

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string // <project>/.osmium

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool

	// Backend settings
	Listen        string  // host:port of the channel server
	DefaultRPCURL string  // used by gas estimation when no endpoint is given
	ForgeBinary   string  // external toolchain executable
	ForgePTY      bool    // run forge attached to a pseudo terminal
	Metrics       bool    // expose /metrics
	WSRate        float64 // inbound messages per second per channel, 0 disables
	WSBurst       int

	// Resolved configurations
	FoundryProfile string
	FoundryConfig  *FoundryConfig
}

// Dirs returns the resolved absolute source, output and script directories
func (c *RuntimeConfig) Dirs() ProjectDirs {
	profile := c.FoundryConfig.Active(c.FoundryProfile)
	return ProjectDirs{
		Src:    c.abs(profile.SrcOrDefault()),
		Out:    c.abs(profile.OutOrDefault()),
		Script: c.abs(profile.ScriptOrDefault()),
	}
}

func (c *RuntimeConfig) abs(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectRoot, p)
}

// ProjectDirs holds the foundry project layout
type ProjectDirs struct {
	Src    string
	Out    string
	Script string
}
