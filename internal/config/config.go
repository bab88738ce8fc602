package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig 定义 HTTP API 服务器的监听配置参数
type ServerConfig struct {
	Host string // 监听地址，默认 "0.0.0.0"
	Port int    // 监听端口，默认 4000
}

// SMTPConfig 定义 SMTP 接收服务器的配置
type SMTPConfig struct {
	BindAddr        string // SMTP 服务监听地址，格式 "host:port"，默认 ":25"（绑定需要特权）
	Hostname        string // 服务器主机名，用于 HELO/EHLO 响应
	MaxMessageBytes int64  // 单封邮件最大字节数，超出时以 552 拒绝
	MaxConnections  int    // 最大并发 SMTP 连接数
	MaxConnRate     int    // 每秒允许的新建连接数
}

// MailConfig 定义收件业务配置
type MailConfig struct {
	Domain string // 接受投递的域名；该域名下任意 local part 都是合法收件箱
}

// MongoConfig 定义 MongoDB 存储配置
type MongoConfig struct {
	URI        string // 连接字符串，留空时回退为内存存储（开发环境）
	Database   string // 数据库名，默认 "tempmail"
	Collection string // 邮件集合名，默认 "emails"

	MaxPoolSize     uint64        // 连接池上限，默认 50
	MinPoolSize     uint64        // 连接池下限，默认 5
	MaxConnIdleTime time.Duration // 空闲连接回收时间，默认 30s
	SelectTimeout   time.Duration // 服务器选择超时，默认 5s
}

// CORSConfig 定义跨域资源共享 (CORS) 配置
type CORSConfig struct {
	AllowedOrigins []string // 允许的来源列表，"*" 表示允许所有来源
}

// LogConfig 定义日志系统配置
type LogConfig struct {
	Level       string // 日志级别: debug, info, warn, error
	Development bool   // 开发模式: 控制台输出与 Gin debug 模式
	File        string // 日志文件路径，留空时只输出到标准输出
}

// Config 是系统核心配置的根结构体，包含所有子系统的配置
type Config struct {
	Server ServerConfig // HTTP API 配置
	SMTP   SMTPConfig   // SMTP 接收配置
	Mail   MailConfig   // 收件业务配置
	Mongo  MongoConfig  // MongoDB 存储配置
	CORS   CORSConfig   // 跨域配置
	Log    LogConfig    // 日志配置
}

// Load 从环境变量和 .env 文件加载系统配置
//
// 配置加载优先级（从高到低）：
//  1. 系统环境变量（最高优先级）
//  2. .env 文件（如果存在）
//  3. 默认值
//
// 环境变量前缀: MAILBIN_
// 例如: MAILBIN_MAIL_DOMAIN, MAILBIN_MONGO_URI
func Load() (*Config, error) {
	// 尝试加载 .env 文件（静默失败，因为 .env 文件是可选的）
	loadEnvFile()

	viper.SetEnvPrefix("mailbin")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 4000)
	viper.SetDefault("smtp.bind_addr", ":25")
	viper.SetDefault("smtp.hostname", "localhost")
	viper.SetDefault("smtp.max_message_bytes", 10*1024*1024)
	viper.SetDefault("smtp.max_connections", 200)
	viper.SetDefault("smtp.max_conn_rate", 100)
	viper.SetDefault("mail.domain", "tempmail.local")
	viper.SetDefault("mongo.uri", "") // 默认为空，使用内存存储
	viper.SetDefault("mongo.database", "tempmail")
	viper.SetDefault("mongo.collection", "emails")
	viper.SetDefault("mongo.max_pool_size", 50)
	viper.SetDefault("mongo.min_pool_size", 5)
	viper.SetDefault("mongo.max_conn_idle_time", "30s")
	viper.SetDefault("mongo.select_timeout", "5s")
	viper.SetDefault("cors.allowed_origins", "*")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)
	viper.SetDefault("log.file", "")

	mailDomain := strings.ToLower(strings.TrimSpace(viper.GetString("mail.domain")))
	if mailDomain == "" {
		return nil, fmt.Errorf("mail.domain must not be empty")
	}
	if strings.Contains(mailDomain, "@") {
		return nil, fmt.Errorf("mail.domain must be a bare domain, got %q", mailDomain)
	}

	maxMessageBytes := viper.GetInt64("smtp.max_message_bytes")
	if maxMessageBytes <= 0 {
		return nil, fmt.Errorf("smtp.max_message_bytes must be positive")
	}

	idleTime, err := time.ParseDuration(viper.GetString("mongo.max_conn_idle_time"))
	if err != nil {
		return nil, fmt.Errorf("mongo.max_conn_idle_time: %w", err)
	}

	selectTimeout, err := time.ParseDuration(viper.GetString("mongo.select_timeout"))
	if err != nil {
		return nil, fmt.Errorf("mongo.select_timeout: %w", err)
	}

	corsOrigins := parseList(viper.GetString("cors.allowed_origins"))
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("server.host"),
			Port: viper.GetInt("server.port"),
		},
		SMTP: SMTPConfig{
			BindAddr:        viper.GetString("smtp.bind_addr"),
			Hostname:        viper.GetString("smtp.hostname"),
			MaxMessageBytes: maxMessageBytes,
			MaxConnections:  viper.GetInt("smtp.max_connections"),
			MaxConnRate:     viper.GetInt("smtp.max_conn_rate"),
		},
		Mail: MailConfig{
			Domain: mailDomain,
		},
		Mongo: MongoConfig{
			URI:             viper.GetString("mongo.uri"),
			Database:        viper.GetString("mongo.database"),
			Collection:      viper.GetString("mongo.collection"),
			MaxPoolSize:     viper.GetUint64("mongo.max_pool_size"),
			MinPoolSize:     viper.GetUint64("mongo.min_pool_size"),
			MaxConnIdleTime: idleTime,
			SelectTimeout:   selectTimeout,
		},
		CORS: CORSConfig{
			AllowedOrigins: corsOrigins,
		},
		Log: LogConfig{
			Level:       viper.GetString("log.level"),
			Development: viper.GetBool("log.development"),
			File:        viper.GetString("log.file"),
		},
	}

	return cfg, nil
}

// parseList 将逗号分隔的字符串解析为字符串切片
func parseList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// loadEnvFile 尝试加载 .env 文件
//
// 加载顺序：
//  1. 当前目录的 .env
//  2. 父目录的 .env（从 backend/ 子目录运行时）
//
// 注意：已存在的环境变量不会被 .env 覆盖。
func loadEnvFile() {
	if err := godotenv.Load(".env"); err == nil {
		return
	}

	parentEnv := filepath.Join("..", ".env")
	if _, err := os.Stat(parentEnv); err == nil {
		_ = godotenv.Load(parentEnv)
	}
}
