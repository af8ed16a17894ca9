package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("AUDIT_WORKERS", "")

	cfg := Load()

	assert.False(t, cfg.Production)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 4, cfg.AuditWorkers)
	assert.Equal(t, "Sri Lanka", cfg.Country)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PAYHERE_MERCHANT_ID", "1211149")
	t.Setenv("PAYHERE_MERCHANT_SECRET", "s3cret")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("AUDIT_WORKERS", "nope")

	cfg := Load()

	assert.True(t, cfg.Production)
	assert.Equal(t, "1211149", cfg.MerchantID)
	assert.Equal(t, "s3cret", cfg.MerchantSecret)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 1, cfg.AuditWorkers)
}

func TestPayHereSandboxOutsideProduction(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("PAYHERE_NOTIFY_URL", "https://api.example.lk/api/payments/notify")

	ph := Load().PayHere()

	assert.True(t, ph.Sandbox)
	assert.Equal(t, "https://api.example.lk/api/payments/notify", ph.NotifyURL)
}

func TestValidateRequiresCredentialsInProduction(t *testing.T) {
	cfg := Config{Production: true, MerchantID: "1211149"}
	assert.Error(t, cfg.Validate())

	cfg.MerchantSecret = "s3cret"
	assert.NoError(t, cfg.Validate())

	assert.NoError(t, Config{}.Validate(), "sandbox may run without credentials")
}
