// Package settings loads daemon configuration for the swss agents.
package settings

import (
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/praveen-li/sonic-swss/pkg/util"
)

// Settings holds daemon configuration shared by orchagent and the sync
// daemons. Zero values fall back to the defaults below.
type Settings struct {
	// RedisAddr is the address of the local redis instance backing the
	// SONiC databases. Overridable with SWSS_REDIS_ADDR.
	RedisAddr string `yaml:"redis_addr,omitempty"`

	// RouterMAC is the system MAC programmed as the source MAC of every
	// router interface.
	RouterMAC string `yaml:"router_mac,omitempty"`

	// MetricsAddr is the listen address for the /metrics endpoint.
	// Empty falls back to DefaultMetricsAddr; it does not disable the
	// endpoint.
	MetricsAddr string `yaml:"metrics_addr,omitempty"`

	// LogLevel is a logrus level name (debug, info, warning, error).
	LogLevel string `yaml:"log_level,omitempty"`

	// LogJSON switches the log formatter to JSON.
	LogJSON bool `yaml:"log_json,omitempty"`
}

// Defaults for an on-device deployment.
const (
	DefaultRedisAddr   = "localhost:6379"
	DefaultRouterMAC   = "52:54:00:00:00:01"
	DefaultMetricsAddr = ":9101"
	DefaultLogLevel    = "info"
)

// Load reads settings from path. A missing file yields defaults; a present
// file must parse and validate.
func Load(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.applyDefaults()
			return s, nil
		}
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}

	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) applyDefaults() {
	if addr := os.Getenv("SWSS_REDIS_ADDR"); addr != "" {
		s.RedisAddr = addr
	}
	if s.RedisAddr == "" {
		s.RedisAddr = DefaultRedisAddr
	}
	if s.RouterMAC == "" {
		s.RouterMAC = DefaultRouterMAC
	}
	if s.MetricsAddr == "" {
		s.MetricsAddr = DefaultMetricsAddr
	}
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
}

// ParsedRouterMAC returns the router MAC as a hardware address.
func (s *Settings) ParsedRouterMAC() (net.HardwareAddr, error) {
	mac, err := net.ParseMAC(s.RouterMAC)
	if err != nil {
		return nil, fmt.Errorf("router_mac %q: %w", s.RouterMAC, err)
	}
	return mac, nil
}

// Validate checks field formats.
func (s *Settings) Validate() error {
	v := &util.ValidationBuilder{}
	if _, err := net.ParseMAC(s.RouterMAC); err != nil {
		v.AddErrorf("router_mac %q: %v", s.RouterMAC, err)
	}
	if _, _, err := net.SplitHostPort(s.RedisAddr); err != nil {
		v.AddErrorf("redis_addr %q: %v", s.RedisAddr, err)
	}
	return v.Result()
}
