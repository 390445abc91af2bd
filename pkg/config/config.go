package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Load when the file leaves fields unset.
const (
	DefaultAPIAddr          = ":6790"
	DefaultDataDir          = "/var/lib/nodelet"
	DefaultNodeIP           = "127.0.0.1"
	DefaultKillGraceSeconds = 10
	DefaultHealthSeconds    = 5
	DefaultPoolSeconds      = 10
	DefaultWorkerPortMin    = 10000
	DefaultWorkerPortMax    = 10999
)

// Config holds the daemon configuration.
type Config struct {
	// NodeIP is the address workers and peers use to reach this node.
	NodeIP string `yaml:"node_ip"`

	// APIAddr is the listen address of the daemon HTTP API.
	APIAddr string `yaml:"api_addr"`

	// DataDir holds the BoltDB database with spawn records.
	DataDir string `yaml:"data_dir"`

	// WorkerCommand is the argv template used to spawn worker processes.
	// Identity and callback details are injected via the environment.
	WorkerCommand []string `yaml:"worker_command"`

	// KillGraceSeconds is how long a worker gets between the graceful
	// termination request and the forced kill (default: 10).
	KillGraceSeconds int `yaml:"kill_grace_seconds"`

	// HealthSeconds is the supervision loop interval (default: 5).
	HealthSeconds int `yaml:"health_seconds"`

	// PoolMinWorkers is the idle worker floor the pool keeps warm.
	// Zero disables pre-spawning.
	PoolMinWorkers int `yaml:"pool_min_workers"`

	// PoolSeconds is the pool reconcile interval (default: 10).
	PoolSeconds int `yaml:"pool_seconds"`

	// WorkerPortMin and WorkerPortMax bound the port range handed to
	// spawned workers for their RPC servers.
	WorkerPortMin int `yaml:"worker_port_min"`
	WorkerPortMax int `yaml:"worker_port_max"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
}

// Default returns a Config populated with defaults only.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML config file and fills unset fields with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.NodeIP == "" {
		c.NodeIP = DefaultNodeIP
	}
	if c.APIAddr == "" {
		c.APIAddr = DefaultAPIAddr
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.KillGraceSeconds == 0 {
		c.KillGraceSeconds = DefaultKillGraceSeconds
	}
	if c.HealthSeconds == 0 {
		c.HealthSeconds = DefaultHealthSeconds
	}
	if c.PoolSeconds == 0 {
		c.PoolSeconds = DefaultPoolSeconds
	}
	if c.WorkerPortMin == 0 {
		c.WorkerPortMin = DefaultWorkerPortMin
	}
	if c.WorkerPortMax == 0 {
		c.WorkerPortMax = DefaultWorkerPortMax
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	if c.KillGraceSeconds < 0 {
		return fmt.Errorf("kill_grace_seconds must not be negative, got %d", c.KillGraceSeconds)
	}
	if c.HealthSeconds <= 0 {
		return fmt.Errorf("health_seconds must be positive, got %d", c.HealthSeconds)
	}
	if c.PoolMinWorkers < 0 {
		return fmt.Errorf("pool_min_workers must not be negative, got %d", c.PoolMinWorkers)
	}
	if c.PoolSeconds <= 0 {
		return fmt.Errorf("pool_seconds must be positive, got %d", c.PoolSeconds)
	}
	if c.WorkerPortMin > c.WorkerPortMax {
		return fmt.Errorf("worker port range is inverted: %d > %d", c.WorkerPortMin, c.WorkerPortMax)
	}
	if c.WorkerPortMin < 1 || c.WorkerPortMax > 65535 {
		return fmt.Errorf("worker port range %d-%d outside 1-65535", c.WorkerPortMin, c.WorkerPortMax)
	}
	return nil
}

// KillGracePeriod returns the graceful-to-forceful escalation delay.
func (c *Config) KillGracePeriod() time.Duration {
	return time.Duration(c.KillGraceSeconds) * time.Second
}

// HealthInterval returns the supervision loop period.
func (c *Config) HealthInterval() time.Duration {
	return time.Duration(c.HealthSeconds) * time.Second
}

// PoolInterval returns the pool reconcile period.
func (c *Config) PoolInterval() time.Duration {
	return time.Duration(c.PoolSeconds) * time.Second
}
