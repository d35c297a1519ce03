// Package config loads and validates the bot configuration.
package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rcr1994/dcabot/internal/domain"
	"github.com/rcr1994/dcabot/internal/exchange/kraken"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Defaults applied to optional fields.
const (
	DefaultQuoteAsset   = "ZEUR"
	DefaultFiatCurrency = "EUR"
	DefaultTradesPath   = "trades.csv"
	DefaultExportPath   = "accounting-export.csv"
)

// Credentials are the Kraken API key pair. The private key stays
// base64-encoded at rest; the signer decodes it once at startup.
type Credentials struct {
	APIKey     string `yaml:"api_key"`
	PrivateKey string `yaml:"private_key"`
}

// TelegramConfig configures the Telegram notification channel. The
// channel is skipped unless both fields are set.
type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID string `yaml:"chat_id"`
}

// EmailConfig configures the SMTP notification channel. The channel is
// skipped unless host, from and at least one recipient are set.
type EmailConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

// Config is the validated bot configuration.
type Config struct {
	APIURL       string
	QuoteAsset   string
	FiatCurrency string
	Credentials  Credentials
	Assets       []domain.AssetOrder
	TradesPath   string
	ExportPath   string
	JournalDir   string
	Telegram     TelegramConfig
	Email        EmailConfig
}

// configTmp mirrors the YAML layout; amounts stay strings until parsed
// into decimals.
type configTmp struct {
	APIURL       string      `yaml:"api_url"`
	QuoteAsset   string      `yaml:"quote_asset"`
	FiatCurrency string      `yaml:"fiat_currency"`
	Kraken       Credentials `yaml:"kraken"`
	Assets       []struct {
		Pair   string `yaml:"pair"`
		Amount string `yaml:"amount"`
	} `yaml:"assets"`
	Ledger struct {
		TradesPath string `yaml:"trades_path"`
		ExportPath string `yaml:"export_path"`
	} `yaml:"ledger"`
	JournalDir    string `yaml:"journal_dir"`
	Notifications struct {
		Telegram TelegramConfig `yaml:"telegram"`
		Email    EmailConfig    `yaml:"email"`
	} `yaml:"notifications"`
}

// Load reads the YAML config at path, applies environment overrides for
// the credentials (KRAKEN_API_KEY, KRAKEN_PRIVATE_KEY) and validates the
// result before any network call is made.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	var tmp configTmp
	if err := yaml.Unmarshal(raw, &tmp); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}

	cfg := &Config{
		APIURL:       tmp.APIURL,
		QuoteAsset:   tmp.QuoteAsset,
		FiatCurrency: tmp.FiatCurrency,
		Credentials:  tmp.Kraken,
		TradesPath:   tmp.Ledger.TradesPath,
		ExportPath:   tmp.Ledger.ExportPath,
		JournalDir:   tmp.JournalDir,
		Telegram:     tmp.Notifications.Telegram,
		Email:        tmp.Notifications.Email,
	}

	if cfg.APIURL == "" {
		cfg.APIURL = kraken.DefaultBaseURL
	}
	if cfg.QuoteAsset == "" {
		cfg.QuoteAsset = DefaultQuoteAsset
	}
	if cfg.FiatCurrency == "" {
		cfg.FiatCurrency = DefaultFiatCurrency
	}
	if cfg.TradesPath == "" {
		cfg.TradesPath = DefaultTradesPath
	}
	if cfg.ExportPath == "" {
		cfg.ExportPath = DefaultExportPath
	}

	if key := os.Getenv("KRAKEN_API_KEY"); key != "" {
		cfg.Credentials.APIKey = key
	}
	if secret := os.Getenv("KRAKEN_PRIVATE_KEY"); secret != "" {
		cfg.Credentials.PrivateKey = secret
	}

	for _, asset := range tmp.Assets {
		if asset.Pair == "" {
			return nil, errors.New("asset entry without a pair")
		}
		amount, err := decimal.NewFromString(asset.Amount)
		if err != nil {
			return nil, errors.Wrapf(err, "incorrect 'amount' for %s (correct format is \"50\")", asset.Pair)
		}
		if !amount.IsPositive() {
			return nil, errors.Errorf("amount for %s must be positive, got %s", asset.Pair, amount)
		}
		cfg.Assets = append(cfg.Assets, domain.AssetOrder{
			Pair:       domain.Pair(asset.Pair),
			FiatAmount: amount,
		})
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Credentials.APIKey == "" {
		return errors.New("kraken api key is missing (config 'kraken.api_key' or KRAKEN_API_KEY)")
	}
	if c.Credentials.PrivateKey == "" {
		return errors.New("kraken private key is missing (config 'kraken.private_key' or KRAKEN_PRIVATE_KEY)")
	}
	if len(c.Assets) == 0 {
		return errors.New("at least one asset is required")
	}
	return nil
}
