// Package setup implements the interactive configuration wizard.
package setup

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// generated mirrors the YAML layout consumed by config.Load.
type generated struct {
	Kraken struct {
		APIKey     string `yaml:"api_key"`
		PrivateKey string `yaml:"private_key"`
	} `yaml:"kraken"`
	Assets []generatedAsset `yaml:"assets"`
	Ledger struct {
		TradesPath string `yaml:"trades_path"`
		ExportPath string `yaml:"export_path"`
	} `yaml:"ledger"`
	JournalDir    string `yaml:"journal_dir,omitempty"`
	Notifications struct {
		Telegram struct {
			Token  string `yaml:"token,omitempty"`
			ChatID string `yaml:"chat_id,omitempty"`
		} `yaml:"telegram"`
		Email struct {
			Host     string   `yaml:"host,omitempty"`
			Port     int      `yaml:"port,omitempty"`
			Username string   `yaml:"username,omitempty"`
			Password string   `yaml:"password,omitempty"`
			From     string   `yaml:"from,omitempty"`
			To       []string `yaml:"to,omitempty"`
		} `yaml:"email"`
	} `yaml:"notifications"`
}

type generatedAsset struct {
	Pair   string `yaml:"pair"`
	Amount string `yaml:"amount"`
}

func header(step string) {
	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("DCABOT CONFIG WIZARD"))
	fmt.Println(stepStyle.Render(step))
}

// RunWizard launches the terminal configuration wizard and writes
// config.gen.yaml.
func RunWizard() error {
	var cfg generated

	header("STEP 1: KRAKEN CREDENTIALS")
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Keys are stored in the generated config; prefer env vars for production.\n"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API Key").
				Value(&cfg.Kraken.APIKey),
			huh.NewInput().
				Title("Private Key (base64)").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Kraken.PrivateKey),
		),
	).Run()
	if err != nil {
		return err
	}

	for {
		asset, addErr := askAsset(len(cfg.Assets) + 1)
		if addErr != nil {
			return addErr
		}
		cfg.Assets = append(cfg.Assets, asset)

		var more bool
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Add another asset?").
					Value(&more),
			),
		).Run()
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}

	header("STEP 3: LEDGER")
	cfg.Ledger.TradesPath = "trades.csv"
	cfg.Ledger.ExportPath = "accounting-export.csv"
	cfg.JournalDir = "journal"
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Trade log file").
				Value(&cfg.Ledger.TradesPath),
			huh.NewInput().
				Title("Accounting export file").
				Value(&cfg.Ledger.ExportPath),
			huh.NewInput().
				Title("Purchase journal directory").
				Description("Empty disables the journal").
				Value(&cfg.JournalDir),
		),
	).Run()
	if err != nil {
		return err
	}

	header("STEP 4: TELEGRAM (OPTIONAL)")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Bot Token").
				Description("Leave empty to skip Telegram notifications").
				Value(&cfg.Notifications.Telegram.Token),
			huh.NewInput().
				Title("Chat ID").
				Value(&cfg.Notifications.Telegram.ChatID),
		),
	).Run()
	if err != nil {
		return err
	}

	header("FINAL CONFIRMATION")
	summary := fmt.Sprintf("Assets: %d\nTrade log: %s\nExport: %s\nTelegram: %v\n",
		len(cfg.Assets), cfg.Ledger.TradesPath, cfg.Ledger.ExportPath,
		cfg.Notifications.Telegram.Token != "")
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	var confirm bool
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\nConfiguration saved to %s", filename)))
	return nil
}

func askAsset(index int) (generatedAsset, error) {
	header(fmt.Sprintf("STEP 2: ASSET %d", index))

	asset := generatedAsset{}
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Trading Pair").
				Description("Kraken notation (e.g. XXBTZEUR, ADAEUR)").
				Value(&asset.Pair).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("pair cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Amount per run").
				Description("Fiat to spend on this asset each run (e.g. 50)").
				Value(&asset.Amount).
				Validate(validateAmount),
		),
	).Run()
	return asset, err
}

func validateAmount(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if !d.IsPositive() {
		return fmt.Errorf("must be positive")
	}
	return nil
}
