// Command dcabot performs one dollar-cost-average purchase run against
// the Kraken spot API: it checks the fiat balance, then buys each
// configured asset at market price, records the trades and notifies the
// operator. It exits after the run; scheduling is left to cron or a
// systemd timer.
//
// Usage:
//
//	dcabot --config config.yaml
//	dcabot --setup   (interactive config wizard)
//
// Credentials can be supplied via KRAKEN_API_KEY and KRAKEN_PRIVATE_KEY
// (a local .env file is picked up if present).
package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"
	"github.com/rcr1994/dcabot/config"
	"github.com/rcr1994/dcabot/internal/exchange/kraken"
	"github.com/rcr1994/dcabot/internal/services/ledger"
	"github.com/rcr1994/dcabot/internal/services/notifier"
	"github.com/rcr1994/dcabot/internal/services/purchaser"
	"github.com/rcr1994/dcabot/internal/setup"
	"go.uber.org/zap"
)

const defaultSMTPPort = 587

func main() {
	configPath := flag.String("config", "config.yaml", "path to yaml config")
	runSetup := flag.Bool("setup", false, "launch the interactive config wizard")
	flag.Parse()

	if *runSetup {
		if err := setup.RunWizard(); err != nil {
			log.Fatal(err)
		}
		return
	}

	// a local .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	client, err := kraken.NewClient(cfg.APIURL, cfg.Credentials.APIKey, cfg.Credentials.PrivateKey, logger)
	if err != nil {
		logger.Fatal("failed to create kraken client", zap.Error(err))
	}

	notif := notifier.New(logger, buildChannels(cfg)...)
	ledg := ledger.New(cfg.TradesPath, cfg.ExportPath, cfg.FiatCurrency, logger)

	p, err := purchaser.New(client, notif, ledg, cfg.QuoteAsset, cfg.Assets, cfg.JournalDir, logger)
	if err != nil {
		logger.Fatal("failed to create purchaser", zap.Error(err))
	}
	defer p.Close()

	report, err := p.Run(context.Background())
	if err != nil {
		logger.Fatal("run aborted", zap.Error(err))
	}

	logger.Info("run finished",
		zap.Int("assets", len(report.Results)),
		zap.Int("purchased", report.Purchased()),
		zap.String("initial_balance", report.InitialBalance.String()),
		zap.String("final_balance", report.FinalBalance.String()))
}

// buildChannels assembles the configured notification channels. A channel
// with incomplete configuration is skipped, not attempted.
func buildChannels(cfg *config.Config) []notifier.Channel {
	var channels []notifier.Channel

	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != "" {
		channels = append(channels, notifier.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID))
	}

	if cfg.Email.Host != "" && cfg.Email.From != "" && len(cfg.Email.To) > 0 {
		port := cfg.Email.Port
		if port == 0 {
			port = defaultSMTPPort
		}
		channels = append(channels, notifier.NewEmail(
			cfg.Email.Host, port, cfg.Email.Username, cfg.Email.Password, cfg.Email.From, cfg.Email.To))
	}

	return channels
}
