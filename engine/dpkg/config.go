package dpkg

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/joshuapare/aptkit/engine"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvPrefix = "APTKIT"
	EnvConfig = "APTKIT_CONFIG"
)

// Config locates the package databases the engine is built from. Relative
// paths are resolved against Root.
type Config struct {
	// Root is the filesystem root of the system being inspected.
	Root string `mapstructure:"root" toml:"root" json:"root"`

	// StatusFile is the dpkg status database.
	StatusFile string `mapstructure:"status_file" toml:"status_file" json:"status_file"`

	// ListsDir holds the downloaded APT indexes.
	ListsDir string `mapstructure:"lists_dir" toml:"lists_dir" json:"lists_dir"`

	// ArchFile lists dpkg's foreign architectures, one per line.
	ArchFile string `mapstructure:"arch_file" toml:"arch_file" json:"arch_file"`

	// Architecture is the native Debian architecture. Empty selects the one
	// matching the running binary.
	Architecture string `mapstructure:"architecture" toml:"architecture" json:"architecture"`

	// ForeignArchitectures are added to the ones read from ArchFile.
	ForeignArchitectures []string `mapstructure:"foreign_architectures" toml:"foreign_architectures" json:"foreign_architectures"`

	// TranscodeLatin1 decodes stanzas that are not valid UTF-8 as ISO-8859-1.
	// When false such text is handed to callers unchanged.
	TranscodeLatin1 bool `mapstructure:"transcode_latin1" toml:"transcode_latin1" json:"transcode_latin1"`

	// Parallelism bounds how many index files are parsed at once.
	// Zero selects GOMAXPROCS.
	Parallelism int `mapstructure:"parallelism" toml:"parallelism" json:"parallelism"`

	// Logger receives build diagnostics. Nil discards them.
	Logger *slog.Logger `mapstructure:"-" toml:"-" json:"-"`
}

// DefaultConfig returns the locations used by Debian and its derivatives.
func DefaultConfig() Config {
	return Config{
		Root:            "/",
		StatusFile:      "var/lib/dpkg/status",
		ListsDir:        "var/lib/apt/lists",
		ArchFile:        "var/lib/dpkg/arch",
		TranscodeLatin1: true,
	}
}

// LoadConfig reads a configuration file (TOML, YAML or JSON, by extension)
// on top of DefaultConfig, then applies APTKIT_* environment overrides.
// An empty path only applies the environment.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	defaults := DefaultConfig()
	v.SetDefault("root", defaults.Root)
	v.SetDefault("status_file", defaults.StatusFile)
	v.SetDefault("lists_dir", defaults.ListsDir)
	v.SetDefault("arch_file", defaults.ArchFile)
	v.SetDefault("architecture", defaults.Architecture)
	v.SetDefault("foreign_architectures", defaults.ForeignArchitectures)
	v.SetDefault("transcode_latin1", defaults.TranscodeLatin1)
	v.SetDefault("parallelism", defaults.Parallelism)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("dpkg: read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("dpkg: decode config: %w", err)
	}
	return cfg, nil
}

// ConfigFromEnv loads the file named by APTKIT_CONFIG, if set, and the
// APTKIT_* overrides (APTKIT_ROOT, APTKIT_ARCHITECTURE, ...).
func ConfigFromEnv() (Config, error) {
	return LoadConfig(os.Getenv(EnvConfig))
}

// Validate reports configuration that cannot produce a cache.
func (c Config) Validate() error {
	var errs []error
	if c.Root == "" {
		errs = append(errs, errors.New("dpkg: root must not be empty"))
	}
	if c.Parallelism < 0 {
		errs = append(errs, fmt.Errorf("dpkg: parallelism must be >= 0, got %d", c.Parallelism))
	}
	if strings.ContainsAny(c.Architecture, " \t/") {
		errs = append(errs, fmt.Errorf("dpkg: invalid architecture %q", c.Architecture))
	}
	return errors.Join(errs...)
}

// MarshalTOML renders c in the format LoadConfig accepts for ".toml" files.
func (c Config) MarshalTOML() ([]byte, error) {
	return toml.Marshal(c)
}

// Opener returns an engine.Opener that builds a fresh cache from c on every
// call.
func (c Config) Opener() engine.Opener {
	return func() (engine.Cache, error) {
		cache, err := Open(c)
		if err != nil {
			return nil, err
		}
		return cache, nil
	}
}

func (c Config) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (c Config) nativeArch() string {
	if c.Architecture != "" {
		return c.Architecture
	}
	return NativeArch()
}

// NativeArch maps the running GOARCH to its Debian architecture name.
func NativeArch() string {
	switch runtime.GOARCH {
	case "386":
		return "i386"
	case "arm":
		return "armhf"
	case "ppc64le":
		return "ppc64el"
	case "mips64le":
		return "mips64el"
	case "mipsle":
		return "mipsel"
	default:
		return runtime.GOARCH
	}
}
