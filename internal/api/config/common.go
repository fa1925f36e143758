package config

// Config 配置主体
type Config struct {
	Env               string            `mapstructure:"env"`
	Server            ServerConfig      `mapstructure:"server"`
	DB                DBConfig          `mapstructure:"database"`
	Redis             RedisConfig       `mapstructure:"redis"`
	Mongo             MongoConfig       `mapstructure:"mongo"`
	MinIO             MinIOConfig       `mapstructure:"minio"`
	JWT               JWTConfig         `mapstructure:"jwt"`
	Nostr             NostrConfig       `mapstructure:"nostr"`
	Views             ViewsConfig       `mapstructure:"views"`
	Kafka             KafkaConfig       `mapstructure:"kafka"`
	KafkaViewConsumer KafkaViewConsumer `mapstructure:"kafka_view_consumer"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	Bucket        string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// NostrConfig Nostr 发布配置
type NostrConfig struct {
	// DefaultRelays 未指定 relay 列表时使用的默认 relay 集
	DefaultRelays []string `mapstructure:"default_relays"`
	// RelaySets 具名 relay 集，按名字解析
	RelaySets map[string][]string `mapstructure:"relay_sets"`
	// PublishTimeout 单个 relay 发布超时（秒）
	PublishTimeout int `mapstructure:"publish_timeout"`
	// PrivkeyEncryptionKey 托管私钥的静态加密密钥，64 位 hex
	PrivkeyEncryptionKey string `mapstructure:"privkey_encryption_key"`
}

// ViewsConfig 阅读量管道配置
type ViewsConfig struct {
	// FlushSecret 冲账触发接口的 Bearer 口令，生产环境未配置时接口整体拒绝
	FlushSecret string `mapstructure:"flush_secret"`
	// StalenessWindowMinutes 遥测判定 stale 的窗口，分钟，夹取到 [5, 10080]
	StalenessWindowMinutes int `mapstructure:"staleness_window_minutes"`
	// RateLimitPerMinute 已识别身份客户端的每分钟计数上限
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute"`
	// AnonRateLimitPerMinute 匿名客户端共享桶的每分钟上限
	AnonRateLimitPerMinute int `mapstructure:"anon_rate_limit_per_minute"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

type KafkaViewConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}
