// Package config loads the device inventory and runtime settings of the
// console tool from a YAML file, with credentials overridable from the
// environment or a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/nanoncore/olt-console/logging"
	"github.com/nanoncore/olt-console/types"
)

const (
	DefaultSSHPort          = 22
	DefaultSNMPPort         = 161
	DefaultTimeout          = 30 * time.Second
	DefaultInventoryTimeout = 90 * time.Second
)

type Config struct {
	Log     logging.Config     `yaml:"log"`
	Metrics Metrics            `yaml:"metrics"`
	Global  Global             `yaml:"global"`
	Devices map[string]*Device `yaml:"devices"`
}

// Metrics enables the Prometheus endpoint when Listen is set.
type Metrics struct {
	Listen string `yaml:"listen"`
	Path   string `yaml:"path"`
}

// Global holds the values a device inherits when it does not set its own.
type Global struct {
	Username         string        `yaml:"username"`
	Password         string        `yaml:"password"`
	Timeout          time.Duration `yaml:"timeout"`
	InventoryTimeout time.Duration `yaml:"inventory_timeout"`
	SNMPCommunity    string        `yaml:"snmp_community"`

	// TranscriptDir receives one <device>.log session transcript per device.
	TranscriptDir string `yaml:"transcript_dir"`
}

type Device struct {
	Vendor           types.Vendor      `yaml:"vendor"`
	Address          string            `yaml:"address"`
	Port             int               `yaml:"port"`
	Username         *string           `yaml:"username"`
	Password         *string           `yaml:"password"`
	Timeout          time.Duration     `yaml:"timeout"`
	InventoryTimeout time.Duration     `yaml:"inventory_timeout"`
	Transcript       string            `yaml:"transcript"`
	SNMPCommunity    string            `yaml:"snmp_community"`
	SNMPPort         int               `yaml:"snmp_port"`
	Metadata         map[string]string `yaml:"metadata"`
}

func DefaultConfig() Config {
	return Config{
		Log:     logging.Config{Level: "info", Colored: true},
		Metrics: Metrics{Path: "/metrics"},
		Global: Global{
			Timeout:          DefaultTimeout,
			InventoryTimeout: DefaultInventoryTimeout,
		},
	}
}

// Load reads the configuration at path. Variables from envFiles (or ./.env
// when none are given) are loaded first without overriding the process
// environment; missing env files are ignored.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	c.applyEnv()
	return c, nil
}

// Parse decodes and validates a configuration document. Unknown keys are
// rejected. The environment is not consulted.
func Parse(data []byte) (*Config, error) {
	c := DefaultConfig()
	if err := yaml.UnmarshalWithOptions(data, &c, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("error parsing config file: %s", yaml.FormatError(err, false, true))
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("error reading env file %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = defaults.Metrics.Path
	}
	if c.Global.Timeout == 0 {
		c.Global.Timeout = defaults.Global.Timeout
	}
	if c.Global.InventoryTimeout == 0 {
		c.Global.InventoryTimeout = defaults.Global.InventoryTimeout
	}
	for _, d := range c.Devices {
		if d == nil {
			continue
		}
		if d.Vendor == "" {
			d.Vendor = types.VendorHuawei
		}
		if d.Port == 0 {
			d.Port = DefaultSSHPort
		}
		if d.SNMPPort == 0 {
			d.SNMPPort = DefaultSNMPPort
		}
	}
}

// applyEnv overrides credentials from OLT_USERNAME, OLT_PASSWORD and the
// per-device OLT_<NAME>_USERNAME / OLT_<NAME>_PASSWORD.
func (c *Config) applyEnv() {
	if v := os.Getenv("OLT_USERNAME"); v != "" {
		c.Global.Username = v
	}
	if v := os.Getenv("OLT_PASSWORD"); v != "" {
		c.Global.Password = v
	}
	for name, d := range c.Devices {
		if v := os.Getenv(EnvKey(name, "USERNAME")); v != "" {
			d.Username = &v
		}
		if v := os.Getenv(EnvKey(name, "PASSWORD")); v != "" {
			d.Password = &v
		}
	}
}

// EnvKey returns the variable name that overrides field for a device, e.g.
// OLT_POP_CENTRO_PASSWORD for "pop-centro".
func EnvKey(device, field string) string {
	name := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(device))
	return "OLT_" + name + "_" + field
}

// Validate checks every device entry.
func (c *Config) Validate() error {
	for _, name := range c.DeviceNames() {
		d := c.Devices[name]
		if d == nil {
			return fmt.Errorf("device %s: empty entry", name)
		}
		if d.Address == "" {
			return fmt.Errorf("device %s: address is required", name)
		}
		switch d.Vendor {
		case types.VendorHuawei, types.VendorMock:
		default:
			return fmt.Errorf("device %s: unsupported vendor %q", name, d.Vendor)
		}
		if d.Port < 1 || d.Port > 65535 {
			return fmt.Errorf("device %s: invalid port %d", name, d.Port)
		}
		if d.SNMPPort < 1 || d.SNMPPort > 65535 {
			return fmt.Errorf("device %s: invalid snmp_port %d", name, d.SNMPPort)
		}
	}
	return nil
}

// DeviceNames returns the configured device names in sorted order.
func (c *Config) DeviceNames() []string {
	names := make([]string, 0, len(c.Devices))
	for name := range c.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Equipment resolves a device entry against the global settings.
func (c *Config) Equipment(name string) (*types.EquipmentConfig, error) {
	d, ok := c.Devices[name]
	if !ok || d == nil {
		return nil, fmt.Errorf("unknown device %q", name)
	}

	eq := &types.EquipmentConfig{
		Name:             name,
		Vendor:           d.Vendor,
		Address:          d.Address,
		Port:             d.Port,
		Username:         c.Global.Username,
		Password:         c.Global.Password,
		Timeout:          firstDuration(d.Timeout, c.Global.Timeout),
		InventoryTimeout: firstDuration(d.InventoryTimeout, c.Global.InventoryTimeout),
		TranscriptPath:   d.Transcript,
		SNMPCommunity:    d.SNMPCommunity,
		SNMPPort:         d.SNMPPort,
		Metadata:         make(map[string]string, len(d.Metadata)),
	}
	if d.Username != nil {
		eq.Username = *d.Username
	}
	if d.Password != nil {
		eq.Password = *d.Password
	}
	if eq.TranscriptPath == "" && c.Global.TranscriptDir != "" {
		eq.TranscriptPath = filepath.Join(c.Global.TranscriptDir, name+".log")
	}
	if eq.SNMPCommunity == "" {
		eq.SNMPCommunity = c.Global.SNMPCommunity
	}
	for k, v := range d.Metadata {
		eq.Metadata[k] = v
	}
	return eq, nil
}

func firstDuration(values ...time.Duration) time.Duration {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
