// Package config 负责加载和管理应用程序的配置。
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
// Load 之后即视为只读，由 main 通过构造函数注入到各组件。
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Search   SearchConfig   `mapstructure:"search"`
	Chat     ChatConfig     `mapstructure:"chat"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。Addr 为空时使用进程内的会话锁。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// KafkaConfig 存储 Kafka 相关的配置。Brokers 为空时不发布对话事件。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// LLMConfig 存储主/备两个大模型服务商的配置以及共享的生成参数。
type LLMConfig struct {
	Temperature float64        `mapstructure:"temperature"`
	MaxTokens   int            `mapstructure:"max_tokens"`
	Primary     ProviderConfig `mapstructure:"primary"`
	Fallback    ProviderConfig `mapstructure:"fallback"`
}

// ProviderConfig 描述一个 OpenAI 兼容的聊天补全服务。
// APIKey 不从配置文件读取，而是在 Load 时根据 APIKeyEnv 从环境变量解析。
type ProviderConfig struct {
	Provider  string        `mapstructure:"provider"`
	Endpoint  string        `mapstructure:"endpoint"`
	Model     string        `mapstructure:"model"`
	APIKeyEnv string        `mapstructure:"api_key_env"`
	Timeout   time.Duration `mapstructure:"timeout"`
	APIKey    string        `mapstructure:"-"`
}

// Configured 表示该服务商的凭证是否存在。
func (p ProviderConfig) Configured() bool {
	return p.APIKey != ""
}

// SearchConfig 存储 web_search 工具所用搜索服务的配置。
type SearchConfig struct {
	Provider      string        `mapstructure:"provider"`
	Endpoint      string        `mapstructure:"endpoint"`
	APIKeyEnv     string        `mapstructure:"api_key_env"`
	SearchDepth   string        `mapstructure:"search_depth"`
	MaxResults    int           `mapstructure:"max_results"`
	IncludeAnswer bool          `mapstructure:"include_answer"`
	Timeout       time.Duration `mapstructure:"timeout"`
	APIKey        string        `mapstructure:"-"`
}

// ChatConfig 存储聊天编排相关的配置。
type ChatConfig struct {
	// WordDelay 是非流式兜底结果逐词下发时的间隔。
	WordDelay   time.Duration `mapstructure:"word_delay"`
	TitleMaxLen int           `mapstructure:"title_max_len"`
	ListLimit   int           `mapstructure:"list_limit"`
	LockTTL     time.Duration `mapstructure:"lock_ttl"`
	// OfflineFallback 为 true 且没有任何大模型凭证时，由本地模板应答器处理对话。
	OfflineFallback bool `mapstructure:"offline_fallback"`
}

// AnyProviderConfigured 表示主/备服务商中至少有一个可用。
func (c *Config) AnyProviderConfigured() bool {
	return c.LLM.Primary.Configured() || c.LLM.Fallback.Configured()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("database.mysql.dsn", "")
	v.SetDefault("database.redis.addr", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "advisor-chat-turns")

	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.primary.provider", "deepseek")
	v.SetDefault("llm.primary.endpoint", "https://api.deepseek.com/v1/chat/completions")
	v.SetDefault("llm.primary.model", "deepseek-chat")
	v.SetDefault("llm.primary.api_key_env", "DEEPSEEK_API_KEY")
	v.SetDefault("llm.primary.timeout", "120s")
	v.SetDefault("llm.fallback.provider", "together")
	v.SetDefault("llm.fallback.endpoint", "https://api.together.xyz/v1/chat/completions")
	v.SetDefault("llm.fallback.model", "meta-llama/Llama-3.3-70B-Instruct-Turbo")
	v.SetDefault("llm.fallback.api_key_env", "TOGETHER_API_KEY")
	v.SetDefault("llm.fallback.timeout", "120s")

	v.SetDefault("search.provider", "tavily")
	v.SetDefault("search.endpoint", "https://api.tavily.com/search")
	v.SetDefault("search.api_key_env", "TAVILY_API_KEY")
	v.SetDefault("search.search_depth", "advanced")
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.include_answer", true)
	v.SetDefault("search.timeout", "15s")

	v.SetDefault("chat.word_delay", "30ms")
	v.SetDefault("chat.title_max_len", 50)
	v.SetDefault("chat.list_limit", 20)
	v.SetDefault("chat.lock_ttl", "3m")
	v.SetDefault("chat.offline_fallback", false)
}

// Load 读取配置文件与环境变量并返回解析后的配置。
// 所有凭证查找都集中在这里完成，请求处理过程中不再读取环境变量。
// configPath 为空或文件不存在时仅使用默认值与环境变量。
func Load(configPath string) (*Config, error) {
	// .env 不存在是正常情况
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("ADVISOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var pathErr *os.PathError
			if !errors.As(err, &pathErr) {
				return nil, fmt.Errorf("读取配置文件失败: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}

	cfg.LLM.Primary.APIKey = lookupEnv(cfg.LLM.Primary.APIKeyEnv)
	cfg.LLM.Fallback.APIKey = lookupEnv(cfg.LLM.Fallback.APIKeyEnv)
	cfg.Search.APIKey = lookupEnv(cfg.Search.APIKeyEnv)
	return &cfg, nil
}

func lookupEnv(name string) string {
	if name == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(name))
}
