package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variables that override config keys,
// e.g. BOMBIE_ASSETS_BROWSER overrides assets.browser.
const EnvPrefix = "BOMBIE"

// keyDelim separates nested viper keys. Alias keys are distribution names,
// which may contain dots (zope.interface), so "." cannot be used.
const keyDelim = "::"

func key(parts ...string) string {
	return strings.Join(parts, keyDelim)
}

// Config captures the provisioning configuration for a project.
type Config struct {
	Version    int              `yaml:"version" mapstructure:"version"`
	Python     PythonConfig     `yaml:"python" mapstructure:"python"`
	Manifest   ManifestConfig   `yaml:"manifest" mapstructure:"manifest"`
	Assets     AssetsConfig     `yaml:"assets" mapstructure:"assets"`
	Verify     VerifyConfig     `yaml:"verify" mapstructure:"verify"`
	Automation AutomationConfig `yaml:"automation" mapstructure:"automation"`
	Provision  ProvisionConfig  `yaml:"provision" mapstructure:"provision"`
	Logs       LogsConfig       `yaml:"logs" mapstructure:"logs"`
}

// PythonConfig describes the base interpreter and the isolated environment.
type PythonConfig struct {
	Interpreter string `yaml:"interpreter" mapstructure:"interpreter"`
	MinVersion  string `yaml:"min_version" mapstructure:"min_version"`
	EnvDir      string `yaml:"env_dir" mapstructure:"env_dir"`
	ScriptsDir  string `yaml:"scripts_dir" mapstructure:"scripts_dir"`
}

// ManifestConfig points at the requirements file.
type ManifestConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// AssetsConfig controls browser binary provisioning.
type AssetsConfig struct {
	Browser     string `yaml:"browser" mapstructure:"browser"`
	CacheDir    string `yaml:"cache_dir,omitempty" mapstructure:"cache_dir"`
	InstallDeps bool   `yaml:"install_deps" mapstructure:"install_deps"`
}

// VerifyConfig controls import verification.
type VerifyConfig struct {
	Critical      string            `yaml:"critical" mapstructure:"critical"`
	ExtraCritical []string          `yaml:"extra_critical,omitempty" mapstructure:"extra_critical"`
	Aliases       map[string]string `yaml:"aliases,omitempty" mapstructure:"aliases"`
}

// AutomationConfig names the module started once provisioning succeeds.
type AutomationConfig struct {
	Module string `yaml:"module" mapstructure:"module"`
}

// ProvisionConfig holds switches for the provisioning state checks.
type ProvisionConfig struct {
	StrictMarkers bool `yaml:"strict_markers" mapstructure:"strict_markers"`
}

// LogsConfig controls the per-run log files.
type LogsConfig struct {
	Dir          string `yaml:"dir" mapstructure:"dir"`
	Level        string `yaml:"level" mapstructure:"level"`
	ClearOnStart bool   `yaml:"clear_on_start" mapstructure:"clear_on_start"`
}

// DefaultInterpreter returns the base interpreter name for the platform.
func DefaultInterpreter(goos string) string {
	if goos == "windows" {
		return "python"
	}
	return "python3"
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		Python: PythonConfig{
			Interpreter: DefaultInterpreter(runtime.GOOS),
			MinVersion:  "3.8",
			EnvDir:      "python_env",
			ScriptsDir:  "src/python",
		},
		Manifest: ManifestConfig{
			File: "requirements.txt",
		},
		Assets: AssetsConfig{
			Browser:     "chromium",
			InstallDeps: true,
		},
		Verify: VerifyConfig{
			Critical:      "playwright",
			ExtraCritical: []string{"telethon"},
		},
		Automation: AutomationConfig{
			Module: "bombie",
		},
		Logs: LogsConfig{
			Dir:   "logs",
			Level: "info",
		},
	}
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault(key("version"), d.Version)
	v.SetDefault(key("python", "interpreter"), d.Python.Interpreter)
	v.SetDefault(key("python", "min_version"), d.Python.MinVersion)
	v.SetDefault(key("python", "env_dir"), d.Python.EnvDir)
	v.SetDefault(key("python", "scripts_dir"), d.Python.ScriptsDir)
	v.SetDefault(key("manifest", "file"), d.Manifest.File)
	v.SetDefault(key("assets", "browser"), d.Assets.Browser)
	v.SetDefault(key("assets", "cache_dir"), d.Assets.CacheDir)
	v.SetDefault(key("assets", "install_deps"), d.Assets.InstallDeps)
	v.SetDefault(key("verify", "critical"), d.Verify.Critical)
	v.SetDefault(key("verify", "extra_critical"), d.Verify.ExtraCritical)
	v.SetDefault(key("verify", "aliases"), map[string]string{})
	v.SetDefault(key("automation", "module"), d.Automation.Module)
	v.SetDefault(key("provision", "strict_markers"), d.Provision.StrictMarkers)
	v.SetDefault(key("logs", "dir"), d.Logs.Dir)
	v.SetDefault(key("logs", "level"), d.Logs.Level)
	v.SetDefault(key("logs", "clear_on_start"), d.Logs.ClearOnStart)
}

// Load reads the YAML configuration at path layered over the defaults, then
// applies BOMBIE_* environment overrides. A missing file yields the defaults.
func Load(path string) (Config, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelim))
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelim, "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("stat config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills zero values that a config file may have blanked out.
func (c *Config) ApplyDefaults() {
	d := Default()
	if c.Version == 0 {
		c.Version = d.Version
	}
	if strings.TrimSpace(c.Python.Interpreter) == "" {
		c.Python.Interpreter = d.Python.Interpreter
	}
	if strings.TrimSpace(c.Python.EnvDir) == "" {
		c.Python.EnvDir = d.Python.EnvDir
	}
	if strings.TrimSpace(c.Manifest.File) == "" {
		c.Manifest.File = d.Manifest.File
	}
	if strings.TrimSpace(c.Assets.Browser) == "" {
		c.Assets.Browser = d.Assets.Browser
	}
	if strings.TrimSpace(c.Verify.Critical) == "" {
		c.Verify.Critical = d.Verify.Critical
	}
	if strings.TrimSpace(c.Automation.Module) == "" {
		c.Automation.Module = d.Automation.Module
	}
	if strings.TrimSpace(c.Logs.Dir) == "" {
		c.Logs.Dir = d.Logs.Dir
	}
	if strings.TrimSpace(c.Logs.Level) == "" {
		c.Logs.Level = d.Logs.Level
	}
}

// CriticalPackages returns the critical package followed by any extras, with
// blanks and repeats of the primary removed.
func (c Config) CriticalPackages() []string {
	primary := strings.TrimSpace(c.Verify.Critical)
	out := []string{primary}
	for _, name := range c.Verify.ExtraCritical {
		name = strings.TrimSpace(name)
		if name == "" || name == primary {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Save writes cfg as YAML to path.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("load env file: %w", err)
	}
	return true, nil
}
