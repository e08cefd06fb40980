package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoaderOption customizes LoadConfig.
type LoaderOption func(*loader)

type loader struct {
	configFile string
	envFile    string
}

// WithConfigFile reads this YAML file instead of searching for one.
func WithConfigFile(path string) LoaderOption {
	return func(l *loader) { l.configFile = path }
}

// WithEnvFile loads this .env file instead of searching for one. A missing
// file is skipped.
func WithEnvFile(path string) LoaderOption {
	return func(l *loader) { l.envFile = path }
}

// LoadConfig fills cfg from the service's YAML file and the environment.
//
// The .env file is loaded first, without overriding variables that are
// already set. The config file is then taken from WithConfigFile, from
// <SERVICE>_CONFIG, or from the first of the standard locations that
// exists. Every key of cfg can be overridden by its upper-cased,
// underscore-joined environment variable.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	var l loader
	for _, opt := range opts {
		opt(&l)
	}

	envFile := l.envFile
	if envFile == "" {
		envFile = firstExisting(searchPaths(".env."+serviceName, ".env", filepath.Join("cmd", serviceName, ".env")))
	}
	if envFile != "" && exists(envFile) {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	configFile := l.configFile
	if configFile == "" {
		configFile = os.Getenv(envKey(serviceName) + "_CONFIG")
	}
	if configFile == "" {
		configFile = firstExisting(searchPaths(
			filepath.Join("cmd", serviceName, "config.yml"),
			filepath.Join("config", "config.yml"),
			"config.yml",
		))
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	keys := append(v.AllKeys(), structKeys(reflect.TypeOf(cfg), "")...)
	for _, key := range keys {
		if err := v.BindEnv(key, envKey(key)); err != nil {
			return fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: decode %s settings: %w", serviceName, err)
	}
	return nil
}

// envKey maps gate.max_concurrent to GATE_MAX_CONCURRENT.
func envKey(key string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// structKeys lists the dotted keys of t's fields that an environment
// variable can hold. Slices of structs and maps are left to the file.
func structKeys(t reflect.Type, prefix string) []string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	var keys []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			continue
		}
		if opts == "squash" || (f.Anonymous && name == "") {
			keys = append(keys, structKeys(f.Type, prefix)...)
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		switch ft.Kind() {
		case reflect.Struct:
			keys = append(keys, structKeys(ft, key)...)
		case reflect.Map, reflect.Func, reflect.Chan, reflect.Interface:
		case reflect.Slice:
			if ft.Elem().Kind() != reflect.Struct {
				keys = append(keys, key)
			}
		default:
			keys = append(keys, key)
		}
	}
	return keys
}

// searchPaths expands names against the working directory and its two
// parents, nearest first.
func searchPaths(names ...string) []string {
	var paths []string
	for _, dir := range []string{".", "..", filepath.Join("..", "..")} {
		for _, name := range names {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths
}

func firstExisting(paths []string) string {
	for _, p := range paths {
		if exists(p) {
			return p
		}
	}
	return ""
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
