package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "RULESET_"

// AppConfig holds the settings of a single conversion run.
type AppConfig struct {
	// SourceURL is the plain-text list of URLs to fetch.
	SourceURL string `koanf:"source_url" validate:"required,http_url"`

	// Output is the path of the rule-set JSON file. Parent directories are created.
	Output string `koanf:"output" validate:"required,file_target"`

	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// LogFormat selects the stderr encoding: "console" or "json".
	LogFormat string `koanf:"log_format" validate:"required,oneof=console json"`

	// Summary enables the post-run statistics report.
	Summary bool `koanf:"summary"`

	// ApexCacheSize bounds the apex-domain memo used by the summary. 0 disables it.
	ApexCacheSize int `koanf:"apex_cache_size" validate:"gte=0"`
}

// DEFAULT_APP_CONFIG mirrors the behaviour of the stock tracker list conversion:
// fetch the trackerslist "best" list and write tracker.json in the working directory.
var DEFAULT_APP_CONFIG = AppConfig{
	SourceURL:     "https://cf.trackerslist.com/best.txt",
	Output:        "tracker.json",
	Env:           "prod",
	LogLevel:      "info",
	LogFormat:     "console",
	Summary:       true,
	ApexCacheSize: 1024,
}

// LoadOptions carries the per-invocation inputs to Load.
// Every field is optional.
type LoadOptions struct {
	// ConfigFile is a YAML, JSON or TOML file layered over the defaults.
	ConfigFile string
	// EnvFile is a dotenv file whose variables are exported before the
	// environment is read. Variables already set in the process win.
	// When empty, ".env" in the working directory is used if it exists.
	EnvFile string
	// Overrides are applied last, keyed by koanf tag (e.g. "source_url").
	Overrides map[string]any
}

// validFileTarget reports whether the value can name a file: it must not be
// a bare directory reference such as ".", "..", or a path ending in a separator.
func validFileTarget(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	if p == "" || strings.HasSuffix(p, "/") || strings.HasSuffix(p, string(os.PathSeparator)) {
		return false
	}
	base := filepath.Base(p)
	return base != "." && base != ".." && base != string(os.PathSeparator)
}

// envLoader loads environment variables with the prefix "RULESET_".
// It transforms the keys to lowercase and removes the prefix,
// and can be mocked in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
			return key, strings.TrimSpace(value)
		},
	}), nil)
}

// defaultLoader loads DEFAULT_APP_CONFIG into the provided Koanf instance.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// fileLoader layers a config file over k, choosing the parser from the extension.
var fileLoader = func(k *koanf.Koanf, path string) error {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	case ".toml":
		parser = toml.Parser()
	default:
		return fmt.Errorf("unsupported config file extension: %q", filepath.Ext(path))
	}
	return k.Load(file.Provider(path), parser)
}

// dotenvLoader exports the variables of a dotenv file into the process environment.
// A missing default file is not an error; a missing explicit file is.
var dotenvLoader = func(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// registerValidation registers the custom "file_target" rule with the provided validator.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("file_target", validFileTarget)
}

// Load assembles an AppConfig from, in increasing precedence: defaults, the
// optional config file, the dotenv file, RULESET_* environment variables and
// explicit overrides. The result is validated before it is returned.
func Load(opts LoadOptions) (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	if opts.ConfigFile != "" {
		if err := fileLoader(k, opts.ConfigFile); err != nil {
			return nil, fmt.Errorf("error loading config file %s: %w", opts.ConfigFile, err)
		}
	}

	if err := dotenvLoader(opts.EnvFile); err != nil {
		return nil, fmt.Errorf("error loading env file: %w", err)
	}

	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	for key, value := range opts.Overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("error applying override %s: %w", key, err)
		}
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidation(validate); err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
