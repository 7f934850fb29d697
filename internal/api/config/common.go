package config

// Config 配置主体
type Config struct {
	Server                  ServerConfig            `mapstructure:"server"`
	DB                      DBConfig                `mapstructure:"database"`
	Redis                   RedisConfig             `mapstructure:"redis"`
	Mongo                   MongoConfig             `mapstructure:"mongo"`
	MinIO                   MinIOConfig             `mapstructure:"minio"`
	Kafka                   KafkaConfig             `mapstructure:"kafka"`
	KafkaEngagementConsumer KafkaEngagementConsumer `mapstructure:"kafka_engagement_consumer"`
	Logstash                LogstashConfig          `mapstructure:"logstash"`
	Security                SecurityConfig          `mapstructure:"security"`
	Platforms               PlatformsConfig         `mapstructure:"platforms"`
	Analytics               AnalyticsConfig         `mapstructure:"analytics"`
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
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
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

type KafkaEngagementConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

// SecurityConfig 凭据加密相关配置
type SecurityConfig struct {
	// TokenCipherKey 32字节密钥的十六进制表示，用于加密第三方访问令牌
	TokenCipherKey string `mapstructure:"token_cipher_key"`
}

// PlatformsConfig 各社交平台 API 配置
type PlatformsConfig struct {
	Twitter   PlatformAPIConfig `mapstructure:"twitter"`
	Facebook  PlatformAPIConfig `mapstructure:"facebook"`
	Instagram PlatformAPIConfig `mapstructure:"instagram"`
	LinkedIn  PlatformAPIConfig `mapstructure:"linkedin"`
	YouTube   PlatformAPIConfig `mapstructure:"youtube"`
}

type PlatformAPIConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// AnalyticsConfig 聚合分析相关配置
type AnalyticsConfig struct {
	// CacheTTLMinutes 聚合结果缓存有效期，默认 60 分钟
	CacheTTLMinutes int `mapstructure:"cache_ttl_minutes"`
	// FetchTimeoutSeconds 单个平台拉取的超时时间，默认 15 秒
	FetchTimeoutSeconds int `mapstructure:"fetch_timeout_seconds"`
}
