package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/faq-chatbot/internal/domain/moderation"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.Equal(t, 60, cfg.FAQ.Threshold)
	require.Equal(t, []string{"비속어1", "비속어2", "폭력", "혐오", "불법"}, cfg.FAQ.BlockedKeywords)
	require.Equal(t, "차단된 질문", cfg.FAQ.BlockedTag)
	require.Equal(t, SourceCSV, cfg.FAQ.Source.Kind)
	require.Equal(t, SinkMemory, cfg.FAQ.Sinks.Kind)
	require.Equal(t, 30*time.Minute, cfg.FAQ.Session.IdleTTL)
}

func TestDefaultKeywordsComeFromModeration(t *testing.T) {
	cfg := defaultConfig()
	require.Equal(t, moderation.DefaultBlockedKeywords, cfg.FAQ.BlockedKeywords)

	cfg.FAQ.BlockedKeywords[0] = "changed"
	require.NotEqual(t, "changed", moderation.DefaultBlockedKeywords[0])
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlDoc := `
http:
  address: ":9090"
faq:
  threshold: 70
  blockedKeywords: ["spam"]
  source:
    kind: memory
  trending:
    store: memory
kafka:
  topic: custom.turns
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("FAQ_THRESHOLD", "75")
	t.Setenv("FAQ_BLOCKED_KEYWORDS", "폭력, 혐오 ,")
	t.Setenv("HTTP_CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, 75, cfg.FAQ.Threshold)
	require.Equal(t, []string{"폭력", "혐오"}, cfg.FAQ.BlockedKeywords)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORS.AllowedOrigins)
	require.Equal(t, SourceMemory, cfg.FAQ.Source.Kind)
	require.Equal(t, "custom.turns", cfg.Kafka.Topic)
}

func TestLoadRejectsZeroThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("faq:\n  threshold: 0\n  source:\n    kind: memory\n"), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("FAQ_THRESHOLD", "")

	_, err := Load()
	require.ErrorContains(t, err, "faq.threshold")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("HTTP_ADDRESS", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FAQ_SOURCE_KIND=memory\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("FAQ_SOURCE_KIND") })

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, SourceMemory, cfg.FAQ.Source.Kind)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "threshold out of range", mutate: func(c *Config) { c.FAQ.Threshold = 101 }, errMsg: "faq.threshold"},
		{name: "threshold zero", mutate: func(c *Config) { c.FAQ.Threshold = 0 }, errMsg: "faq.threshold"},
		{name: "unknown source", mutate: func(c *Config) { c.FAQ.Source.Kind = "ftp" }, errMsg: "faq.source.kind"},
		{name: "csv without path", mutate: func(c *Config) { c.FAQ.Source.Path = "" }, errMsg: "faq.source.path"},
		{name: "sheets without id", mutate: func(c *Config) { c.FAQ.Source.Kind = SourceSheets }, errMsg: "sheets.spreadsheetId"},
		{name: "sheets without credentials", mutate: func(c *Config) {
			c.FAQ.Sinks.Kind = SinkSheets
			c.Sheets.SpreadsheetID = "abc"
		}, errMsg: "credentials"},
		{name: "object without key", mutate: func(c *Config) {
			c.FAQ.Source.Kind = SourceObject
			c.ObjectStore.Endpoint = "https://r2.example"
			c.ObjectStore.Bucket = "faq"
		}, errMsg: "objectKey"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.FAQ.Sinks.Kind = SinkPostgres }, errMsg: "postgres.dsn"},
		{name: "cache without valkey", mutate: func(c *Config) { c.FAQ.Source.Cache.Enabled = true }, errMsg: "valkey.addr"},
		{name: "valkey trending without addr", mutate: func(c *Config) { c.FAQ.Trending.Store = StoreValkey }, errMsg: "valkey.addr"},
		{name: "smtp without host", mutate: func(c *Config) { c.Notify.SMTP.Enabled = true }, errMsg: "notify.smtp.host"},
		{name: "kafka without brokers", mutate: func(c *Config) { c.Kafka.Enabled = true }, errMsg: "kafka.brokers"},
		{name: "operators without secret", mutate: func(c *Config) {
			c.Admin.Operators = []OperatorConfig{{Username: "admin", PasswordHash: "$2a$"}}
		}, errMsg: "admin.secret"},
	}

	require.NoError(t, defaultConfig().Validate())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestSheetsCredentials(t *testing.T) {
	cfg := defaultConfig()
	cfg.Sheets.CredentialsJSON = `{"type":"service_account"}`
	data, err := cfg.SheetsCredentials()
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"service_account"}`, string(data))

	path := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))
	cfg.Sheets.CredentialsJSON = ""
	cfg.Sheets.CredentialsFile = path
	data, err = cfg.SheetsCredentials()
	require.NoError(t, err)
	require.Equal(t, "{}", string(data))
}
