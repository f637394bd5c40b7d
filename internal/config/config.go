package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ReceiverConfig 接收端配置
type ReceiverConfig struct {
	// 接收方式：manual, google_voice, email（仅后两者为后台轮询）
	Method string

	// 轮询间隔（秒），默认 60秒
	CheckInterval int

	// 去重键 TTL（秒），默认 7天
	DedupTTL int

	// IMAP 邮箱配置（email 接收方式）
	IMAP struct {
		Server       string
		Port         int
		EmailAddress string
		Password     string
		// 号码归一化时缺省的国家码前缀
		DefaultCountryCode string
	}

	// 语音信箱账号配置（google_voice 接收方式）
	Voice VoiceAccountConfig
}

// EmailNotifyConfig 邮件通知渠道配置
type EmailNotifyConfig struct {
	Enabled    bool
	SMTPServer string
	SMTPPort   int
	FromEmail  string
	Password   string
	ToEmails   []string
}

// SMSNotifyConfig 短信通知渠道配置
type SMSNotifyConfig struct {
	Enabled bool
	// 短信服务商：twilio, vonage, aws_sns, google_voice, webhook
	Provider  string
	ToNumbers []string
}

// PushNotifyConfig 推送通知渠道配置
type PushNotifyConfig struct {
	Enabled    bool
	WebhookURL string
	APIKey     string
}

// TwilioConfig Twilio 凭据
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	// 测试时覆盖 API 地址
	BaseURL string
}

// VonageConfig Vonage (Nexmo) 凭据
type VonageConfig struct {
	APIKey     string
	APISecret  string
	FromNumber string
	BaseURL    string
}

// AWSSNSConfig AWS SNS 凭据
type AWSSNSConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// VoiceAccountConfig 语音信箱 Web 账号凭据
type VoiceAccountConfig struct {
	BaseURL  string
	Email    string
	Password string
}

// WebhookSMSConfig 自定义短信 webhook 配置
type WebhookSMSConfig struct {
	URL    string
	APIKey string
}

// SMSProvidersConfig 各短信服务商凭据
type SMSProvidersConfig struct {
	Twilio      TwilioConfig
	Vonage      VonageConfig
	AWSSNS      AWSSNSConfig
	GoogleVoice VoiceAccountConfig
	Webhook     WebhookSMSConfig
}

// NotifyConfig 通知配置（各渠道独立启用）
type NotifyConfig struct {
	Email     EmailNotifyConfig
	SMS       SMSNotifyConfig
	Push      PushNotifyConfig
	Providers SMSProvidersConfig
}

// Config 站点监测服务配置
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Receiver ReceiverConfig
	Notify   NotifyConfig

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	// 从环境变量加载（默认值）
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "station_monitor")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// 接收端配置
	cfg.Receiver.Method = getEnv("RECEIVER_METHOD", MethodManual)
	cfg.Receiver.CheckInterval = getEnvInt("RECEIVER_CHECK_INTERVAL", 60)
	cfg.Receiver.DedupTTL = getEnvInt("RECEIVER_DEDUP_TTL", 7*24*3600)

	cfg.Receiver.IMAP.Server = getEnv("IMAP_SERVER", "")
	cfg.Receiver.IMAP.Port = getEnvInt("IMAP_PORT", 993)
	cfg.Receiver.IMAP.EmailAddress = getEnv("IMAP_EMAIL", "")
	cfg.Receiver.IMAP.Password = getEnv("IMAP_PASSWORD", "")
	cfg.Receiver.IMAP.DefaultCountryCode = getEnv("IMAP_DEFAULT_COUNTRY_CODE", "+1")

	cfg.Receiver.Voice.BaseURL = getEnv("VOICE_BASE_URL", "")
	cfg.Receiver.Voice.Email = getEnv("VOICE_EMAIL", "")
	cfg.Receiver.Voice.Password = getEnv("VOICE_PASSWORD", "")

	// 通知渠道配置
	cfg.Notify.Email.Enabled = getEnvBool("NOTIFY_EMAIL_ENABLED", false)
	cfg.Notify.Email.SMTPServer = getEnv("NOTIFY_SMTP_SERVER", "")
	cfg.Notify.Email.SMTPPort = getEnvInt("NOTIFY_SMTP_PORT", 587)
	cfg.Notify.Email.FromEmail = getEnv("NOTIFY_FROM_EMAIL", "")
	cfg.Notify.Email.Password = getEnv("NOTIFY_EMAIL_PASSWORD", "")
	cfg.Notify.Email.ToEmails = getEnvList("NOTIFY_TO_EMAILS", nil)

	cfg.Notify.SMS.Enabled = getEnvBool("NOTIFY_SMS_ENABLED", false)
	cfg.Notify.SMS.Provider = getEnv("NOTIFY_SMS_PROVIDER", "twilio")
	cfg.Notify.SMS.ToNumbers = getEnvList("NOTIFY_SMS_TO_NUMBERS", nil)

	cfg.Notify.Push.Enabled = getEnvBool("NOTIFY_PUSH_ENABLED", false)
	cfg.Notify.Push.WebhookURL = getEnv("NOTIFY_PUSH_WEBHOOK_URL", "")
	cfg.Notify.Push.APIKey = getEnv("NOTIFY_PUSH_API_KEY", "")

	// 短信服务商凭据
	cfg.Notify.Providers.Twilio.AccountSID = getEnv("TWILIO_ACCOUNT_SID", "")
	cfg.Notify.Providers.Twilio.AuthToken = getEnv("TWILIO_AUTH_TOKEN", "")
	cfg.Notify.Providers.Twilio.FromNumber = getEnv("TWILIO_FROM_NUMBER", "")
	cfg.Notify.Providers.Twilio.BaseURL = getEnv("TWILIO_BASE_URL", "https://api.twilio.com")

	cfg.Notify.Providers.Vonage.APIKey = getEnv("VONAGE_API_KEY", "")
	cfg.Notify.Providers.Vonage.APISecret = getEnv("VONAGE_API_SECRET", "")
	cfg.Notify.Providers.Vonage.FromNumber = getEnv("VONAGE_FROM_NUMBER", "")
	cfg.Notify.Providers.Vonage.BaseURL = getEnv("VONAGE_BASE_URL", "https://rest.nexmo.com")

	cfg.Notify.Providers.AWSSNS.AccessKeyID = getEnv("AWS_SNS_ACCESS_KEY_ID", "")
	cfg.Notify.Providers.AWSSNS.SecretAccessKey = getEnv("AWS_SNS_SECRET_ACCESS_KEY", "")
	cfg.Notify.Providers.AWSSNS.Region = getEnv("AWS_SNS_REGION", "us-east-1")

	cfg.Notify.Providers.GoogleVoice.BaseURL = getEnv("GOOGLE_VOICE_BASE_URL", "")
	cfg.Notify.Providers.GoogleVoice.Email = getEnv("GOOGLE_VOICE_EMAIL", "")
	cfg.Notify.Providers.GoogleVoice.Password = getEnv("GOOGLE_VOICE_PASSWORD", "")

	cfg.Notify.Providers.Webhook.URL = getEnv("SMS_WEBHOOK_URL", "")
	cfg.Notify.Providers.Webhook.APIKey = getEnv("SMS_WEBHOOK_API_KEY", "")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

// 接收方式
const (
	MethodManual      = "manual"
	MethodGoogleVoice = "google_voice"
	MethodEmail       = "email"
)

// IsPollerMethod 判断接收方式是否为后台轮询型
func IsPollerMethod(method string) bool {
	return method == MethodGoogleVoice || method == MethodEmail
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
