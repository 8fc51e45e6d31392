package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RedisConfig holds configuration for Redis
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// 连接池设置
	PoolSize     int `yaml:"pool_size"`      // 连接池大小
	MinIdleConns int `yaml:"min_idle_conns"` // 最小空闲连接数
	// 超时设置
	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`  // 连接超时(秒)
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`  // 读取超时(秒)
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"` // 写入超时(秒)
	// 重试设置
	MaxRetries        int `yaml:"max_retries"`          // 最大重试次数
	MinRetryBackoffMS int `yaml:"min_retry_backoff_ms"` // 最小重试间隔(毫秒)
	MaxRetryBackoffMS int `yaml:"max_retry_backoff_ms"` // 最大重试间隔(毫秒)
	// 缓存记录过期时间(天)，0表示不过期
	TextCacheExpireDays int `yaml:"text_cache_expire_days"`
}

// StorageConfig 本地存储目录配置
type StorageConfig struct {
	ResumeDir   string `yaml:"resume_dir"`   // 原始简历文件目录
	ParsedDir   string `yaml:"parsed_dir"`   // 提取文本缓存目录（file后端）
	MetadataDir string `yaml:"metadata_dir"` // 简历元数据记录目录
}

// CacheConfig 提取文本缓存后端配置
type CacheConfig struct {
	Backend string `yaml:"backend"` // "file" 或 "redis"
}

// MatcherConfig 匹配引擎配置
type MatcherConfig struct {
	MaxWorkers     int    `yaml:"max_workers"`     // 单次匹配批的最大并发数
	ExtractTimeout string `yaml:"extract_timeout"` // 单份简历的提取超时，例如 "30s"
}

// ServerConfig 定义服务器配置
type ServerConfig struct {
	Address string `yaml:"address"` // 例如 ":8080" or "0.0.0.0:8080"
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, pretty
	TimeFormat   string `yaml:"time_format"`   // 时间格式
	ReportCaller bool   `yaml:"report_caller"` // 是否报告调用位置
}

// Config 应用程序配置
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Cache   CacheConfig   `yaml:"cache"`
	Redis   RedisConfig   `yaml:"redis"`
	Matcher MatcherConfig `yaml:"matcher"`
	Logger  LoggerConfig  `yaml:"logger"`
}

// LoadConfig 从文件加载配置
// configPath为空时在常见位置查找；测试环境下找不到文件则回退到默认配置
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		searchPaths := []string{
			"config.yaml",
			"./config.yaml",
			"../config.yaml",
			"../../config.yaml",
			filepath.Join(os.Getenv("HOME"), ".resume-matcher", "config.yaml"),
		}

		if execPath, err := os.Executable(); err == nil {
			execDir := filepath.Dir(execPath)
			searchPaths = append(searchPaths, filepath.Join(execDir, "config.yaml"))
			searchPaths = append(searchPaths, filepath.Join(execDir, "..", "config.yaml"))
		}

		for _, path := range searchPaths {
			if _, err := os.Stat(path); err == nil {
				configPath = path
				break
			}
		}

		if configPath == "" {
			if inTestEnv() {
				return createDefaultConfig(), nil
			}
			configPath = "config.yaml"
		}
	}

	if _, err := os.Stat(configPath); err != nil {
		if inTestEnv() {
			return createDefaultConfig(), nil
		}
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 从环境变量覆盖配置（如果存在）
	if envAddr := os.Getenv("REDIS_ADDRESS"); envAddr != "" {
		config.Redis.Address = envAddr
	}
	if envDir := os.Getenv("RESUME_DIR"); envDir != "" {
		config.Storage.ResumeDir = envDir
	}

	applyDefaults(&config)
	return &config, nil
}

// inTestEnv 粗略判断当前进程是否为 go test 启动
func inTestEnv() bool {
	for _, arg := range os.Args {
		if strings.Contains(arg, "test") {
			return true
		}
	}
	return false
}

// applyDefaults 填充未配置项的默认值
func applyDefaults(config *Config) {
	if config.Server.Address == "" {
		config.Server.Address = ":8080"
	}
	if config.Storage.ResumeDir == "" {
		config.Storage.ResumeDir = "data/resumes"
	}
	if config.Storage.ParsedDir == "" {
		config.Storage.ParsedDir = "data/parsed"
	}
	if config.Storage.MetadataDir == "" {
		config.Storage.MetadataDir = "data/metadata"
	}
	if config.Cache.Backend == "" {
		config.Cache.Backend = "file"
	}
	if config.Matcher.MaxWorkers <= 0 {
		config.Matcher.MaxWorkers = 4
	}
	if config.Matcher.ExtractTimeout == "" {
		config.Matcher.ExtractTimeout = "30s"
	}
	if config.Logger.Level == "" {
		config.Logger.Level = "info"
	}
	if config.Logger.Format == "" {
		config.Logger.Format = "json"
	}
}

// 创建一个默认配置，用于测试环境
func createDefaultConfig() *Config {
	config := &Config{}

	config.Server.Address = ":8080"

	config.Storage.ResumeDir = "data/resumes"
	config.Storage.ParsedDir = "data/parsed"
	config.Storage.MetadataDir = "data/metadata"

	config.Cache.Backend = "file"

	// Redis默认配置（仅当 cache.backend 为 redis 时使用）
	config.Redis.Address = "localhost:6379"
	config.Redis.Password = ""
	config.Redis.DB = 0
	config.Redis.PoolSize = 10
	config.Redis.MinIdleConns = 2
	config.Redis.DialTimeoutSeconds = 5
	config.Redis.ReadTimeoutSeconds = 3
	config.Redis.WriteTimeoutSeconds = 3
	config.Redis.MaxRetries = 3
	config.Redis.MinRetryBackoffMS = 8
	config.Redis.MaxRetryBackoffMS = 512
	config.Redis.TextCacheExpireDays = 365 // 默认1年过期

	config.Matcher.MaxWorkers = 4
	config.Matcher.ExtractTimeout = "30s"

	// 日志默认配置
	config.Logger.Level = "info"
	config.Logger.Format = "pretty" // 开发环境默认使用美化输出
	config.Logger.TimeFormat = "2006-01-02 15:04:05"
	config.Logger.ReportCaller = true

	return config
}

// CreateSampleConfig 创建一个示例配置文件
func CreateSampleConfig(filePath string) error {
	if _, err := os.Stat(filePath); err == nil {
		return fmt.Errorf("文件 '%s' 已存在，不会覆盖", filePath)
	}

	config := createDefaultConfig()

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	err = os.WriteFile(filePath, data, 0644)
	if err != nil {
		return fmt.Errorf("写入示例配置文件 '%s' 失败: %w", filePath, err)
	}

	fmt.Printf("示例配置文件已创建: %s\n", filePath)
	return nil
}

// GetDuration utility to parse duration strings from config
func GetDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return defaultDuration
	}
	return d
}
