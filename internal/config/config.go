// Package config loads the diagnostics configuration from a YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marcuoli/go-netdiag/pkg/netdiag"
	"github.com/marcuoli/go-netdiag/pkg/netdiag/oui"
	"github.com/marcuoli/go-netdiag/pkg/netdiag/resolve"
)

// Environment variables read by FromEnv.
const (
	EnvConfig     = "NETDIAG_CONFIG"
	EnvTimeout    = "NETDIAG_TIMEOUT"
	EnvTimeServer = "NETDIAG_TIME_SERVER"
	EnvDNSServers = "NETDIAG_DNS_SERVERS"
	EnvOUIDB      = "NETDIAG_OUI_DB"
	EnvDebug      = "NETDIAG_DEBUG"
)

// Config holds the tunables of a netdiag client.
type Config struct {
	// Timeout applies to operations given no timeout of their own.
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// TimeServer is the default NTP server, "host" or "host:port".
	TimeServer string `yaml:"time_server,omitempty"`
	// DNSServers replaces the system resolver with unicast queries to
	// these servers, tried in order.
	DNSServers []string `yaml:"dns_servers,omitempty"`
	// OUIDatabase is the path of an IEEE oui.txt file.
	OUIDatabase string `yaml:"oui_database,omitempty"`
	// Debug is "off", "basic" or "verbose".
	Debug string `yaml:"debug,omitempty"`
}

// FromYAML reads a config from r.
func FromYAML(r io.Reader) (*Config, error) {
	confBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config from reader: %w", err)
	}

	var conf Config
	if err := yaml.Unmarshal(confBytes, &conf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Load reads the config file at path. An empty path yields the zero config.
func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return FromYAML(f)
}

// FromEnv loads the file named by NETDIAG_CONFIG, if any, and applies the
// environment overrides on top of it.
func FromEnv() (*Config, error) {
	conf, err := Load(os.Getenv(EnvConfig))
	if err != nil {
		return nil, err
	}
	if err := conf.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return conf, nil
}

// ApplyEnv overrides fields from environment variables found by lookup.
// NETDIAG_TIMEOUT accepts a Go duration or a plain number of milliseconds.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	if v, ok := lookup(EnvTimeServer); ok && v != "" {
		c.TimeServer = v
	}
	if v, ok := lookup(EnvDNSServers); ok && v != "" {
		c.DNSServers = nil
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				c.DNSServers = append(c.DNSServers, s)
			}
		}
	}
	if v, ok := lookup(EnvOUIDB); ok && v != "" {
		c.OUIDatabase = v
	}
	if v, ok := lookup(EnvDebug); ok && v != "" {
		c.Debug = v
	}
	return c.Validate()
}

func parseTimeout(s string) (time.Duration, error) {
	if ms, err := strconv.ParseUint(s, 10, 32); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(s)
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Timeout < 0 || c.Timeout > netdiag.MaxTimeout {
		return fmt.Errorf("timeout %s out of range (0-%s)", c.Timeout, netdiag.MaxTimeout)
	}
	if _, err := netdiag.ParseDebugLevel(c.Debug); err != nil {
		return err
	}
	for _, s := range c.DNSServers {
		if s == "" {
			return errors.New("empty DNS server")
		}
	}
	return nil
}

// DebugLevel returns the parsed debug level.
func (c *Config) DebugLevel() netdiag.DebugLevel {
	level, _ := netdiag.ParseDebugLevel(c.Debug)
	return level
}

// Options converts the config into client options. Collaborators that are
// not configured are left for netdiag.New to default.
func (c *Config) Options() netdiag.Options {
	opts := netdiag.Options{
		Timeout:    c.Timeout,
		TimeServer: c.TimeServer,
		Vendors:    oui.Open(c.OUIDatabase),
	}
	if len(c.DNSServers) > 0 {
		u := resolve.NewUnicast(c.DNSServers)
		if c.Timeout > 0 {
			u.Timeout = c.Timeout
		}
		opts.Resolver = u
	}
	return opts
}
