// Package config loads the client configuration from an optional YAML file
// merged with AUTH_-prefixed environment variables. Every field has a working
// default so the tool runs with no configuration at all.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"

	"github.com/jrsteele09/go-auth-client/authapi"
)

const (
	envPrefix       = "AUTH_"
	configFileName  = "config.yaml"
	defaultBaseURL  = "http://localhost:10000"
	defaultTimeout  = 15 * time.Second
	defaultLogLevel = "info"
)

type Config struct {
	API struct {
		BaseURL string        `json:"baseUrl" yaml:"baseUrl"`
		Timeout time.Duration `json:"timeout" yaml:"timeout"`
	} `json:"api" yaml:"api"`

	Credentials struct {
		Path string `json:"path" yaml:"path"`
	} `json:"credentials" yaml:"credentials"`

	Log struct {
		Pretty bool   `json:"pretty" yaml:"pretty"`
		Level  string `json:"level" yaml:"level"`
	} `json:"log" yaml:"log"`

	OAuth map[string]OAuthProvider `json:"oauth" yaml:"oauth"`
}

// OAuthProvider mirrors authapi.OAuthProvider for file configuration.
type OAuthProvider struct {
	ClientID    string   `json:"clientId" yaml:"clientId"`
	AuthURL     string   `json:"authUrl" yaml:"authUrl"`
	RedirectURL string   `json:"redirectUrl" yaml:"redirectUrl"`
	Scopes      []string `json:"scopes" yaml:"scopes"`
}

// Providers converts the configured OAuth section into the form the API
// client consumes, keyed by provider name.
func (c *Config) Providers() map[string]authapi.OAuthProvider {
	providers := make(map[string]authapi.OAuthProvider, len(c.OAuth))
	for name, p := range c.OAuth {
		providers[name] = authapi.OAuthProvider{
			Name:        name,
			ClientID:    p.ClientID,
			AuthURL:     p.AuthURL,
			RedirectURL: p.RedirectURL,
			Scopes:      p.Scopes,
		}
	}
	return providers
}

// Load builds the configuration from defaults, then the first config.yaml
// found in searchPaths (missing files are fine), then AUTH_ environment
// variables. AUTH_API_BASEURL overrides api.baseUrl and so on.
func Load(searchPaths ...string) (*Config, error) {
	cfg := defaults()
	koanfInstance := koanf.New(".")

	for _, path := range searchPaths {
		candidate := filepath.Join(path, configFileName)
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if err := koanfInstance.Load(file.Provider(candidate), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "[Load] read %s failed", candidate)
		}
		break
	}

	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			key := strings.TrimPrefix(k, envPrefix)
			key = strings.ReplaceAll(strings.ToLower(key), "_", ".")
			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "[Load] load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrap(err, "[Load] unmarshal config failed")
	}

	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.API.BaseURL = defaultBaseURL
	cfg.API.Timeout = defaultTimeout
	cfg.Credentials.Path = defaultCredentialsPath()
	cfg.Log.Level = defaultLogLevel
	return cfg
}

func defaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "authcli", "credentials.json")
}
