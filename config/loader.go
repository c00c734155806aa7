package config

import (
	"cmp"
	"fmt"
	"maps"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/kbukum/whisperd/util"
)

// maxEnvKeyParts bounds how many underscore-separated parts of an
// environment variable name are expanded into nested key candidates.
const maxEnvKeyParts = 6

// LoaderConfig collects the LoadConfig options.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string         // explicit config.yml path
	EnvFile    string         // explicit .env path
	Defaults   map[string]any // dotted keys, lowest precedence
}

// LoaderOption configures LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem replaces the operating system file access.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile skips the search and reads path. A missing file is not an error.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile skips the search and loads path into the environment.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithDefaults registers default values keyed by dotted path
// (e.g. "whisper.model"). Repeated calls accumulate. An environment variable
// set to an empty string still overrides its default.
func WithDefaults(defaults map[string]any) LoaderOption {
	return func(lc *LoaderConfig) {
		if lc.Defaults == nil {
			lc.Defaults = make(map[string]any, len(defaults))
		}
		maps.Copy(lc.Defaults, defaults)
	}
}

// LoadConfig decodes configuration for service into cfg. Precedence from
// lowest to highest: defaults, config.yml, then the environment (with the
// .env file loaded into it first). Durations decode from strings like
// "250ms" and lists from comma-separated strings.
func LoadConfig(service string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: osFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}
	files := (&Resolver{FileSystem: lc.FileSystem}).ResolveFiles(service, lc)

	v := viper.New()
	for key, value := range lc.Defaults {
		v.SetDefault(key, value)
	}
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", files.ConfigFile, err)
		}
	}
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			fmt.Fprintf(os.Stderr, "[config] ignoring %s: %v\n", files.EnvFile, err)
		}
	}
	known := make(map[string]struct{})
	for _, key := range v.AllKeys() {
		known[key] = struct{}{}
	}
	structKeys(reflect.TypeOf(cfg), "", known)
	bindEnv(v, os.Environ(), known)

	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(cfg, viper.DecodeHook(hook)); err != nil {
		return fmt.Errorf("decode config for %s: %w", service, err)
	}
	return nil
}

// bindEnv sets each KEY=value pair under the known config keys it could
// name, so SEGMENTER_MIN_SILENCE reaches segmenter.min_silence while
// WHISPER_MODEL_DIR, which names no field, is ignored. Set values outrank
// the file and the defaults, empty ones included.
func bindEnv(v *viper.Viper, environ []string, known map[string]struct{}) {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		value = util.SanitizeEnvValue(value)
		for _, key := range envKeys(name) {
			if _, ok := known[key]; ok {
				v.Set(key, value)
			}
		}
	}
}

var timeType = reflect.TypeFor[time.Time]()

// structKeys adds the dotted mapstructure key of every leaf field of t to
// keys. Squashed structs contribute their fields at prefix; maps and slices
// are leaves.
func structKeys(t reflect.Type, prefix string, keys map[string]struct{}) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			continue
		}
		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if strings.Contains(opts, "squash") {
			structKeys(ft, prefix, keys)
			continue
		}
		key := prefix + strings.ToLower(cmp.Or(name, f.Name))
		if ft.Kind() == reflect.Struct && ft != timeType {
			structKeys(ft, key+".", keys)
			continue
		}
		keys[key] = struct{}{}
	}
}

// envKeys lists the config keys an environment variable may address: every
// way of joining its underscore-separated parts with either "." or "_".
// Names with more than maxEnvKeyParts parts only get the all-underscore and
// all-dot forms.
func envKeys(name string) []string {
	lower := strings.ToLower(name)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return []string{lower}
	}
	if len(parts) > maxEnvKeyParts {
		return []string{lower, strings.Join(parts, ".")}
	}

	gaps := len(parts) - 1
	keys := make([]string, 0, 1<<gaps)
	var b strings.Builder
	for mask := 0; mask < 1<<gaps; mask++ {
		b.Reset()
		b.WriteString(parts[0])
		for i, part := range parts[1:] {
			if mask&(1<<i) != 0 {
				b.WriteByte('.')
			} else {
				b.WriteByte('_')
			}
			b.WriteString(part)
		}
		keys = append(keys, b.String())
	}
	return keys
}
