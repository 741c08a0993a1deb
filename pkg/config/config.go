// Package config loads client settings from defaults, an optional config
// file, OSSQL_ environment variables, command line flags and a connection
// URL.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. OSSQL_FETCH_SIZE.
const EnvPrefix = "OSSQL"

// URLPrefix is the mandatory prefix of connection URLs.
const URLPrefix = "jdbc:opensearch://"

// Config holds the connection and client settings.
type Config struct {
	URL               string        `mapstructure:"url"`
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	Path              string        `mapstructure:"path"`
	UseSSL            bool          `mapstructure:"use-ssl"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	FetchSize         int           `mapstructure:"fetch-size"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"rps"`
	StrictTypes       bool          `mapstructure:"strict-types"`
	TimeZone          string        `mapstructure:"tz"`
	LogLevel          string        `mapstructure:"log-level"`
	LogFormat         string        `mapstructure:"log-format"`
}

var defaults = map[string]any{
	"url":          "",
	"host":         "localhost",
	"port":         9200,
	"path":         "",
	"use-ssl":      false,
	"user":         "",
	"password":     "",
	"fetch-size":   0,
	"timeout":      30 * time.Second,
	"rps":          0.0,
	"strict-types": false,
	"tz":           "UTC",
	"log-level":    "WARN",
	"log-format":   "text",
}

// AddFlags defines the connection flags on fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.String("url", "", "connection URL, "+URLPrefix+"[scheme://]host[:port][/path][?key=value&...]")
	fs.String("host", "localhost", "service host")
	fs.Int("port", 9200, "service port")
	fs.String("path", "", "path prefix of the service endpoints")
	fs.Bool("use-ssl", false, "connect over https")
	fs.String("user", "", "basic auth user")
	fs.String("password", "", "basic auth password")
	fs.Int("fetch-size", 0, "rows per page requested from the service (0 = service default)")
	fs.Duration("timeout", 30*time.Second, "round trip timeout")
	fs.Float64("rps", 0, "maximum requests per second (0 = unlimited)")
	fs.Bool("strict-types", false, "fail on column types missing from the registry")
	fs.String("tz", "UTC", "time zone used to read date and time values")
	fs.String("log-level", "WARN", "log level (DEBUG, INFO, WARN, ERROR)")
	fs.String("log-format", "text", "log format (text, json)")
}

// Load resolves the configuration. Precedence from lowest to highest:
// defaults, config file, environment, flags. Values carried by a
// connection URL then override the fields they name.
func Load(fs *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.URL != "" {
		props, err := ParseURL(cfg.URL)
		if err != nil {
			return nil, err
		}
		if err := cfg.apply(props); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseURL splits a connection URL into lower-cased property keys. host,
// port, path and use-ssl are derived from the URL itself; query string
// pairs are returned as given and override the derived values. Only http
// and https schemes are accepted; http is assumed when none is given.
func ParseURL(raw string) (map[string]string, error) {
	if !strings.HasPrefix(raw, URLPrefix) {
		return nil, fmt.Errorf("URL does not begin with the mandatory prefix %s", URLPrefix)
	}
	target := strings.TrimSpace(raw)[len(URLPrefix):]
	props := map[string]string{}
	if target == "" {
		return props, nil
	}
	if !strings.Contains(target, "://") {
		target = "http://" + target
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "https":
		props["use-ssl"] = "true"
	case "http":
		props["use-ssl"] = "false"
	default:
		return nil, fmt.Errorf("invalid scheme %q: only http and https are supported", u.Scheme)
	}
	if h := u.Hostname(); h != "" {
		props["host"] = h
	}
	if p := u.Port(); p != "" {
		props["port"] = p
	}
	if u.Path != "" {
		props["path"] = u.Path
	}

	if u.RawQuery != "" {
		for _, kvp := range strings.Split(u.RawQuery, "&") {
			if kvp == "" {
				continue
			}
			kv := strings.Split(kvp, "=")
			if len(kv) != 2 {
				return nil, fmt.Errorf("invalid query string at %q: expected key=value pairs", kv[0])
			}
			props[strings.ToLower(kv[0])] = kv[1]
		}
	}
	return props, nil
}

func (c *Config) apply(props map[string]string) error {
	for k, val := range props {
		var err error
		switch k {
		case "host":
			c.Host = val
		case "port":
			c.Port, err = strconv.Atoi(val)
		case "path":
			c.Path = val
		case "use-ssl", "usessl":
			c.UseSSL, err = strconv.ParseBool(val)
		case "user":
			c.User = val
		case "password":
			c.Password = val
		case "fetch-size", "fetchsize":
			c.FetchSize, err = strconv.Atoi(val)
		case "timeout":
			c.Timeout, err = parseTimeout(val)
		case "tz":
			c.TimeZone = val
		case "strict-types":
			c.StrictTypes, err = strconv.ParseBool(val)
		}
		if err != nil {
			return fmt.Errorf("invalid URL property %s=%q: %w", k, val, err)
		}
	}
	return nil
}

// parseTimeout accepts a Go duration or a number of seconds.
func parseTimeout(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.FetchSize < 0 {
		return fmt.Errorf("fetch size must not be negative")
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("rps must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// BaseURL is the scheme, host, port and path prefix of the service.
func (c *Config) BaseURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   strings.TrimRight(c.Path, "/"),
	}
	return u.String()
}

// Location resolves TimeZone; empty means UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}
