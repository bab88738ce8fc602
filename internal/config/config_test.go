package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, ":25", cfg.SMTP.BindAddr)
	assert.Equal(t, int64(10*1024*1024), cfg.SMTP.MaxMessageBytes)
	assert.Equal(t, "tempmail.local", cfg.Mail.Domain)
	assert.Equal(t, "", cfg.Mongo.URI)
	assert.Equal(t, "tempmail", cfg.Mongo.Database)
	assert.Equal(t, "emails", cfg.Mongo.Collection)
	assert.Equal(t, uint64(50), cfg.Mongo.MaxPoolSize)
	assert.Equal(t, uint64(5), cfg.Mongo.MinPoolSize)
	assert.Equal(t, 30*time.Second, cfg.Mongo.MaxConnIdleTime)
	assert.Equal(t, 5*time.Second, cfg.Mongo.SelectTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Development)
}

func TestLoad_FromEnvironment(t *testing.T) {
	viper.Reset()
	t.Setenv("MAILBIN_MAIL_DOMAIN", "Inbox.Example.COM")
	t.Setenv("MAILBIN_MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("MAILBIN_MONGO_COLLECTION", "inbound")
	t.Setenv("MAILBIN_SERVER_PORT", "8080")
	t.Setenv("MAILBIN_SMTP_BIND_ADDR", ":2525")
	t.Setenv("MAILBIN_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	// 域名在加载时归一化为小写
	assert.Equal(t, "inbox.example.com", cfg.Mail.Domain)
	assert.Equal(t, "mongodb://mongo:27017", cfg.Mongo.URI)
	assert.Equal(t, "inbound", cfg.Mongo.Collection)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":2525", cfg.SMTP.BindAddr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("空域名", func(t *testing.T) {
		viper.Reset()
		t.Setenv("MAILBIN_MAIL_DOMAIN", "   ")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("域名包含@", func(t *testing.T) {
		viper.Reset()
		t.Setenv("MAILBIN_MAIL_DOMAIN", "user@tempmail.local")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("非法的邮件大小上限", func(t *testing.T) {
		viper.Reset()
		t.Setenv("MAILBIN_SMTP_MAX_MESSAGE_BYTES", "0")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("非法的连接空闲时间", func(t *testing.T) {
		viper.Reset()
		t.Setenv("MAILBIN_MONGO_MAX_CONN_IDLE_TIME", "thirty seconds")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("非法的服务器选择超时", func(t *testing.T) {
		viper.Reset()
		t.Setenv("MAILBIN_MONGO_SELECT_TIMEOUT", "5x")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parseList("a, b"))
	assert.Empty(t, parseList(" , ,"))
	assert.Equal(t, []string{"*"}, parseList("*"))
}
