package mobsquid

import (
	"time"

	"github.com/mobsquid/mobsquid-go/adapters"
)

// Re-export adapter types for convenience
type (
	Event          = adapters.Event
	Location       = adapters.Location
	Platform       = adapters.Platform
	Transport      = adapters.Transport
	StorageAdapter = adapters.StorageAdapter
	LoggerAdapter  = adapters.LoggerAdapter
	LogLevel       = adapters.LogLevel
)

// Defaults applied by NewClient to zero-valued ClientConfig fields.
const (
	DefaultQueueCapacity    = 500
	DefaultMaxBatchSize     = 20
	DefaultFlushInterval    = 30 * time.Second
	DefaultMaxAttempts      = 5
	DefaultSendTimeout      = 10 * time.Second
	DefaultRetryBaseDelay   = time.Second
	DefaultRetryMaxDelay    = time.Minute
	DefaultDebugHistorySize = 100
	DefaultStoragePath      = "mobsquid_events.json"

	maxNameLength = 255
)

// ClientConfig configures a Client. It can be filled in code or loaded
// from YAML with LoadConfig; adapters can only be set in code.
type ClientConfig struct {
	// Endpoint is the collector URL used when Transport is nil.
	Endpoint string `yaml:"endpoint"`

	FlushInterval  time.Duration `yaml:"flush_interval"`
	MaxBatchSize   int           `yaml:"max_batch_size"`
	QueueCapacity  int           `yaml:"queue_capacity"`
	MaxAttempts    int           `yaml:"max_attempts"`
	SendTimeout    time.Duration `yaml:"send_timeout"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"`
	RetryMaxDelay  time.Duration `yaml:"retry_max_delay"`

	DebugHistorySize    int  `yaml:"debug_history_size"`
	DisableDebugHistory bool `yaml:"disable_debug_history"`

	// CollectDeviceInfo seeds the context with host facts on Start.
	CollectDeviceInfo bool `yaml:"collect_device_info"`

	LogLevel    string `yaml:"log_level"`
	StoragePath string `yaml:"storage_path"`

	Transport      Transport      `yaml:"-"`
	StorageAdapter StorageAdapter `yaml:"-"`
	LoggerAdapter  LoggerAdapter  `yaml:"-"`
}

// PipelineConfig is the part of ClientConfig the event pipeline needs.
type PipelineConfig struct {
	QueueCapacity  int
	MaxBatchSize   int
	MaxAttempts    int
	FlushInterval  time.Duration
	SendTimeout    time.Duration
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

func (c *ClientConfig) applyDefaults() {
	if c.FlushInterval <= 0 {
		c.FlushInterval = DefaultFlushInterval
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = DefaultMaxBatchSize
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = DefaultQueueCapacity
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = DefaultSendTimeout
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if c.RetryMaxDelay <= 0 {
		c.RetryMaxDelay = DefaultRetryMaxDelay
	}
	if c.RetryMaxDelay < c.RetryBaseDelay {
		c.RetryMaxDelay = c.RetryBaseDelay
	}
	if c.DebugHistorySize <= 0 {
		c.DebugHistorySize = DefaultDebugHistorySize
	}
	if c.StoragePath == "" {
		c.StoragePath = DefaultStoragePath
	}
	if c.LogLevel == "" {
		c.LogLevel = string(adapters.LogLevelWarn)
	}
}

func (c ClientConfig) pipelineConfig() PipelineConfig {
	return PipelineConfig{
		QueueCapacity:  c.QueueCapacity,
		MaxBatchSize:   c.MaxBatchSize,
		MaxAttempts:    c.MaxAttempts,
		FlushInterval:  c.FlushInterval,
		SendTimeout:    c.SendTimeout,
		RetryBaseDelay: c.RetryBaseDelay,
		RetryMaxDelay:  c.RetryMaxDelay,
	}
}
