package helper

// Config is the top-level YAML shape loaded by cmd/poold, following the
// Type-discriminator + validate:"required" pattern bamboo used for its own
// pluggable request/result transports, now applied to this pool's
// pluggable result cache, audit sink, and tracing backend.
type Config struct {
	App           AppConfig           `yaml:"app" validate:"required"`
	Log           LogConfig           `yaml:"log"`
	Trace         TracingConfig       `yaml:"trace" validate:"required"`
	Pool          PoolConfig          `yaml:"pool" validate:"required"`
	WorkerClient  WorkerClientConfig  `yaml:"workerClient" validate:"required"`
	ResultCache   ResultCacheConfig   `yaml:"resultCache" validate:"required"`
	Audit         AuditConfig         `yaml:"audit" validate:"required"`
	MetricsServer MetricsServerConfig `yaml:"metricsServer" validate:"required"`
}

type AppConfig struct {
	Name string `yaml:"name" validate:"required"`
}

// PoolConfig carries the pool's own construction parameters plus the
// statically-known workers to register at startup.
type PoolConfig struct {
	SecretKeyBase64 string         `yaml:"secretKeyBase64" validate:"required"`
	MaxQueuedJobs   int            `yaml:"maxQueuedJobs" validate:"required"`
	Workers         []WorkerConfig `yaml:"workers"`
}

type WorkerConfig struct {
	Host         string `yaml:"host" validate:"required"`
	PubkeyBase64 string `yaml:"pubkeyBase64" validate:"required"`
}

type WorkerClientConfig struct {
	TimeoutSec int `yaml:"timeoutSec" validate:"required"`
}

// ResultCacheConfig selects the §4.2 result cache backend.
type ResultCacheConfig struct {
	Type  string             `yaml:"type" validate:"required"`
	Redis *RedisCacheConfig  `yaml:"redis"`
}

type RedisCacheConfig struct {
	Addrs     []string `yaml:"addrs" validate:"required"`
	Password  string   `yaml:"password"`
	TTLSec    int      `yaml:"ttlSec" validate:"required"`
}

// AuditConfig selects the best-effort event-audit publisher.
type AuditConfig struct {
	Type  string            `yaml:"type" validate:"required"`
	Kafka *KafkaAuditConfig `yaml:"kafka"`
}

type KafkaAuditConfig struct {
	Brokers []string `yaml:"brokers" validate:"required"`
	Topic   string   `yaml:"topic" validate:"required"`
}

// TracingConfig selects the OpenTelemetry exporter.
type TracingConfig struct {
	Type   string        `yaml:"type" validate:"required"`
	Jaeger *JaegerConfig `yaml:"jaeger"`
	GCP    *GCPConfig    `yaml:"gcp"`
}

type JaegerConfig struct {
	Endpoint string `yaml:"endpoint" validate:"required"`
}

type GCPConfig struct {
	ProjectID string `yaml:"projectId" validate:"required"`
}

type MetricsServerConfig struct {
	Port                    int `yaml:"port" validate:"required"`
	GracefulShutdownTimeSec int `yaml:"gracefulShutdownTimeSec"`
}
