package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/cli"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/config"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/telemetry/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Validate and inspect configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration with environment overrides and validate it.

Exits with status 2 and lists every invalid field when validation fails.`,
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Print the configuration after defaults and environment overrides.

Secrets are masked.`,
	RunE: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd, configShowCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(cfg.Providers))
	for id := range cfg.Providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	summary := cli.KeyValues{
		{"Status", "valid"},
		{"Default Provider", cfg.Engine.DefaultProvider},
		{"Providers", strconv.Itoa(len(ids))},
		{"Storage", cfg.Storage.Backend},
		{"Audit", auditSummary(cfg)},
		{"Listen", cfg.Server.ListenAddress},
	}
	return render(cmd, map[string]any{
		"valid":           true,
		"defaultProvider": cfg.Engine.DefaultProvider,
		"providers":       ids,
		"storage":         cfg.Storage.Backend,
		"audit":           auditSummary(cfg),
		"listenAddress":   cfg.Server.ListenAddress,
	}, summary)
}

func auditSummary(cfg *config.Config) string {
	if !cfg.Audit.Enabled {
		return "disabled"
	}
	return cfg.Audit.Driver
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	masked := maskSecrets(cfg)
	out, err := yaml.Marshal(masked)
	if err != nil {
		return cli.NewCommandError("config show", fmt.Errorf("failed to encode configuration: %w", err))
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// maskSecrets returns a copy of cfg with credentials masked.
func maskSecrets(cfg *config.Config) *config.Config {
	c := *cfg
	c.Providers = make(map[string]config.ProviderConfig, len(cfg.Providers))
	for id, pc := range cfg.Providers {
		if pc.APIKey != "" {
			pc.APIKey = logging.RedactAPIKey(pc.APIKey)
		}
		c.Providers[id] = pc
	}
	if c.Storage.S3.SecretAccessKey != "" {
		c.Storage.S3.SecretAccessKey = "[REDACTED]"
	}
	if c.Storage.S3.AccessKeyID != "" {
		c.Storage.S3.AccessKeyID = logging.RedactAPIKey(c.Storage.S3.AccessKeyID)
	}
	if c.Audit.DSN != "" && c.Audit.Driver == "postgres" {
		c.Audit.DSN = "[REDACTED]"
	}
	return &c
}
