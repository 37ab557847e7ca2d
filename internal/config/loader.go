package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// LookupFunc returns the value of an environment variable and whether it
// was set. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Load reads configuration from the process environment, applies defaults
// and validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom is Load with an explicit variable source.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	cfg := &Config{}

	var errs []error
	for _, b := range bindings(reflect.ValueOf(cfg).Elem()) {
		if err := b.apply(lookup); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// binding ties one tagged field to its environment variables.
type binding struct {
	name     string
	alt      string
	def      string
	required bool
	target   reflect.Value
}

// bindings flattens the tagged fields of v, descending into nested
// section structs.
func bindings(v reflect.Value) []binding {
	var out []binding
	t := v.Type()
	for i := range t.NumField() {
		f, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if f.Type.Kind() == reflect.Struct {
			out = append(out, bindings(fv)...)
			continue
		}
		name := f.Tag.Get("env")
		if name == "" {
			continue
		}
		out = append(out, binding{
			name:     name,
			alt:      f.Tag.Get("envAlt"),
			def:      f.Tag.Get("default"),
			required: f.Tag.Get("required") == "true",
			target:   fv,
		})
	}
	return out
}

func (b binding) apply(lookup LookupFunc) error {
	raw := b.value(lookup)
	if raw == "" {
		if b.required {
			return fmt.Errorf("required environment variable %s is not set", b.name)
		}
		raw = b.def
	}
	if raw == "" {
		return nil
	}
	if err := decode(b.target, raw); err != nil {
		return fmt.Errorf("invalid value for %s=%q: %w", b.name, raw, err)
	}
	return nil
}

// value prefers the primary name; an empty primary falls through to alt.
func (b binding) value(lookup LookupFunc) string {
	if v, ok := lookup(b.name); ok && v != "" {
		return v
	}
	if b.alt != "" {
		if v, ok := lookup(b.alt); ok {
			return v
		}
	}
	return ""
}

var durationType = reflect.TypeFor[time.Duration]()

func decode(dst reflect.Value, raw string) error {
	if dst.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		dst.SetInt(int64(d))
		return nil
	}

	switch dst.Kind() {
	case reflect.String:
		dst.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		dst.SetInt(n)
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		dst.SetBool(v)
	case reflect.Slice:
		if dst.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", dst.Type())
		}
		dst.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type: %s", dst.Kind())
	}
	return nil
}

// splitList splits a comma-separated value, dropping blank entries.
func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// problems accumulates validation failures.
type problems []string

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var p problems

	p.check(c.Server.Port > 0 && c.Server.Port <= 65535, "SERVER_PORT (%d) must be 1-65535", c.Server.Port)
	p.check(c.Server.ReadTimeout >= 0, "SERVER_READ_TIMEOUT must be non-negative")
	p.check(c.Server.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	p.check(c.Server.RequestTimeout > 0, "SERVER_REQUEST_TIMEOUT must be positive")

	p.check(c.Upload.MaxFileSize > 0, "UPLOAD_MAX_FILE_SIZE must be positive")
	p.check(c.Upload.MaxConcurrent > 0, "UPLOAD_MAX_CONCURRENT must be positive")
	p.check(c.Upload.MaxWaitTime > 0, "UPLOAD_MAX_WAIT_TIME must be positive")
	p.check(c.Upload.Timeout > 0, "UPLOAD_TIMEOUT must be positive")

	if c.Rate.Enabled {
		p.check(c.Rate.RequestsPerMinute > 0, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
		p.check(c.Rate.Burst > 0, "RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}

	for _, cidr := range c.Security.TrustedProxies {
		_, err := netip.ParsePrefix(cidr)
		p.check(err == nil, "TRUSTED_PROXIES entry %q is not a valid CIDR", cidr)
	}

	if c.Cache.Enabled {
		p.check(c.Cache.MaxEntries > 0, "CACHE_MAX_ENTRIES must be positive when caching is enabled")
		p.check(c.Cache.TTL >= 0, "CACHE_TTL must be non-negative")
		p.check(c.Cache.SweepInterval > 0, "CACHE_SWEEP_INTERVAL must be positive when caching is enabled")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		p.check(false, "LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		p.check(false, "LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)
	}

	if len(p) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(p, "\n  - "))
	}
	return nil
}

// String returns a compact representation of the config for logging.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Server: {Addr: %q}, Upload: {MaxFileSize: %d, MaxConcurrent: %d, Timeout: %s}, "+
		"Rate: {Enabled: %v, RPM: %d, Burst: %d}, Cache: {Enabled: %v, MaxEntries: %d, TTL: %s}, "+
		"Pipeline: {Long: %v, Variants: %v}, Metrics: {Enabled: %v}, Logging: {Level: %q, Format: %q}}",
		c.Server.Addr(),
		c.Upload.MaxFileSize, c.Upload.MaxConcurrent, c.Upload.Timeout,
		c.Rate.Enabled, c.Rate.RequestsPerMinute, c.Rate.Burst,
		c.Cache.Enabled, c.Cache.MaxEntries, c.Cache.TTL,
		c.Pipeline.DefaultLong, c.Pipeline.DefaultVariants,
		c.Metrics.Enabled,
		c.Logging.Level, c.Logging.Format,
	)
}
