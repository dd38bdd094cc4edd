package config

import (
	"time"
)

type Config struct {
	Platform  string          `yaml:"platform"`
	Log       LogConfig       `yaml:"log"`
	Endpoint  EndpointConfig  `yaml:"endpoint"`
	Request   RequestConfig   `yaml:"request"`
	Session   SessionConfig   `yaml:"session"`
	Profile   ProfileConfig   `yaml:"profile"`
	DevServer DevServerConfig `yaml:"dev_server"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

// EndpointConfig lists the hosts the backend may be reachable at. The
// candidate order is significant: the resolver probes platform-affine
// candidates first, in list order.
type EndpointConfig struct {
	Candidates   []HostCandidate `yaml:"candidates"`
	ProbePath    string          `yaml:"probe_path"`
	ProbeTimeout time.Duration   `yaml:"probe_timeout"`
}

type HostCandidate struct {
	URL      string `yaml:"url"`
	Affinity string `yaml:"affinity"`
}

type RequestConfig struct {
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	MutationTimeout time.Duration `yaml:"mutation_timeout"`
	RetryBackoff    time.Duration `yaml:"retry_backoff"`
}

type SessionConfig struct {
	Store StoreConfig `yaml:"store"`
}

// StoreConfig selects the credential store driver.
type StoreConfig struct {
	Driver string            `yaml:"driver"`
	File   FileStoreConfig   `yaml:"file,omitempty"`
	Redis  RedisStoreConfig  `yaml:"redis,omitempty"`
	Memory MemoryStoreConfig `yaml:"memory,omitempty"`
}

type FileStoreConfig struct {
	Dir string `yaml:"dir"`
}

type RedisStoreConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Key      string `yaml:"key,omitempty"`
}

type MemoryStoreConfig struct{}

type ProfileConfig struct {
	MaxAge time.Duration `yaml:"max_age"`
}

// DevServerConfig configures the development mock backend.
type DevServerConfig struct {
	Addr          string `yaml:"addr"`
	JWTSecret     string `yaml:"jwt_secret"`
	RedisAddr     string `yaml:"redis_addr"`
	EmbeddedRedis bool   `yaml:"embedded_redis"`
	ReportLimit   int    `yaml:"report_limit"`
}
