package config

// FoundryConfig represents the parts of foundry.toml the backend reads
type FoundryConfig struct {
	Profile      map[string]ProfileConfig `toml:"profile"`
	RpcEndpoints map[string]string        `toml:"rpc_endpoints"`
}

// ProfileConfig represents a profile's foundry configuration
type ProfileConfig struct {
	SrcPath    string `toml:"src,omitempty"`
	OutPath    string `toml:"out,omitempty"`
	ScriptPath string `toml:"script,omitempty"`
}

const (
	DefaultSrcDir    = "src"
	DefaultOutDir    = "out"
	DefaultScriptDir = "script"
)

// Active returns the named profile layered over the default profile
func (f *FoundryConfig) Active(name string) ProfileConfig {
	if f == nil {
		return ProfileConfig{}
	}
	base := f.Profile["default"]
	if name == "" || name == "default" {
		return base
	}
	p, ok := f.Profile[name]
	if !ok {
		return base
	}
	if p.SrcPath == "" {
		p.SrcPath = base.SrcPath
	}
	if p.OutPath == "" {
		p.OutPath = base.OutPath
	}
	if p.ScriptPath == "" {
		p.ScriptPath = base.ScriptPath
	}
	return p
}

func (p ProfileConfig) SrcOrDefault() string    { return orDefault(p.SrcPath, DefaultSrcDir) }
func (p ProfileConfig) OutOrDefault() string    { return orDefault(p.OutPath, DefaultOutDir) }
func (p ProfileConfig) ScriptOrDefault() string { return orDefault(p.ScriptPath, DefaultScriptDir) }

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
