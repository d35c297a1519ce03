package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rcr1994/dcabot/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
kraken:
  api_key: test-key
  private_key: dGVzdC1zZWNyZXQ=
assets:
  - pair: XXBTZEUR
    amount: "50"
  - pair: ADAEUR
    amount: "25.5"
ledger:
  trades_path: /tmp/trades.csv
notifications:
  telegram:
    token: tg-token
    chat_id: "42"
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	require.Equal(t, "test-key", cfg.Credentials.APIKey)
	require.Equal(t, "ZEUR", cfg.QuoteAsset)
	require.Equal(t, "EUR", cfg.FiatCurrency)
	require.Equal(t, "/tmp/trades.csv", cfg.TradesPath)
	require.Equal(t, DefaultExportPath, cfg.ExportPath)

	require.Len(t, cfg.Assets, 2)
	require.Equal(t, domain.Pair("XXBTZEUR"), cfg.Assets[0].Pair)
	require.True(t, cfg.Assets[0].FiatAmount.Equal(decimal.RequireFromString("50")))
	require.True(t, cfg.Assets[1].FiatAmount.Equal(decimal.RequireFromString("25.5")))

	require.Equal(t, "tg-token", cfg.Telegram.Token)
	require.Empty(t, cfg.Email.Host)
}

func TestLoadEnvOverridesCredentials(t *testing.T) {
	t.Setenv("KRAKEN_API_KEY", "env-key")
	t.Setenv("KRAKEN_PRIVATE_KEY", "env-secret")

	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)
	require.Equal(t, "env-key", cfg.Credentials.APIKey)
	require.Equal(t, "env-secret", cfg.Credentials.PrivateKey)
}

func TestLoadMissingCredentials(t *testing.T) {
	_, err := Load(writeConfig(t, `
assets:
  - pair: ADAEUR
    amount: "10"
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "api key is missing")
}

func TestLoadRejectsNonPositiveAmount(t *testing.T) {
	_, err := Load(writeConfig(t, `
kraken:
  api_key: k
  private_key: s
assets:
  - pair: ADAEUR
    amount: "0"
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "must be positive")
}

func TestLoadRequiresAssets(t *testing.T) {
	_, err := Load(writeConfig(t, `
kraken:
  api_key: k
  private_key: s
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "at least one asset")
}

func TestLoadPreservesAssetOrder(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
kraken:
  api_key: k
  private_key: s
assets:
  - pair: DOTEUR
    amount: "10"
  - pair: ADAEUR
    amount: "10"
  - pair: XXBTZEUR
    amount: "10"
`))
	require.NoError(t, err)
	require.Equal(t, domain.Pair("DOTEUR"), cfg.Assets[0].Pair)
	require.Equal(t, domain.Pair("ADAEUR"), cfg.Assets[1].Pair)
	require.Equal(t, domain.Pair("XXBTZEUR"), cfg.Assets[2].Pair)
}
