package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/cli"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/decision"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/engine"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/types"
)

var decideFlags struct {
	file     string
	provider string
}

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Resolve requests into decisions without generating",
	Long: `Resolve one request, or a JSON array of requests, into decisions.

No provider is called and nothing is stored or audited. The output is what
the engine would act on.

Examples:
  # Decide a request file
  imagery decide -f request.json

  # Read from stdin and print JSON
  cat request.json | imagery decide -o json`,
	RunE: runDecide,
}

func init() {
	rootCmd.AddCommand(decideCmd)

	decideCmd.Flags().StringVarP(&decideFlags.file, "file", "f", "-", "request file (- for stdin)")
	decideCmd.Flags().StringVar(&decideFlags.provider, "provider", "", "override engine.default_provider")
}

func runDecide(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reqs, batch, err := readRequests(cmd.InOrStdin(), decideFlags.file)
	if err != nil {
		return cli.NewCommandError("decide", err)
	}

	opts := engine.OptionsFromConfig(cfg.Engine)
	if decideFlags.provider != "" {
		opts.ProviderID = decideFlags.provider
	}

	decisions := make([]types.Decision, 0, len(reqs))
	for _, req := range reqs {
		decisions = append(decisions, decision.Resolve(req, opts))
	}

	if batch {
		return render(cmd, decisions, decisionTable(decisions))
	}
	return render(cmd, decisions[0], decisionText(&decisions[0]))
}

func decisionText(d *types.Decision) cli.KeyValues {
	kv := cli.KeyValues{
		{"Request ID", d.RequestID},
		{"Mode", string(d.Mode)},
		{"Platform", string(d.Platform)},
		{"Aspect", string(d.Aspect)},
		{"Category", string(d.Category)},
		{"Energy", string(d.Energy)},
		{"Text", string(d.Text.Allowance)},
		{"Allowed", boolText(d.Safety.IsAllowed)},
	}
	if len(d.Safety.Reasons) > 0 {
		kv = append(kv, [2]string{"Reasons", strings.Join(d.Safety.Reasons, ", ")})
	}
	if d.IsLive() {
		kv = append(kv,
			[2]string{"Template", d.PromptPlan.TemplateID},
			[2]string{"Provider", d.ProviderPlan.ProviderID},
			[2]string{"Model Tier", string(d.ProviderPlan.ModelTier)},
		)
	}
	return kv
}

func decisionTable(ds []types.Decision) cli.Table {
	t := cli.Table{Headers: []string{"REQUEST ID", "MODE", "PLATFORM", "CATEGORY", "ASPECT", "PROVIDER", "REASONS"}}
	for i := range ds {
		d := &ds[i]
		t.Rows = append(t.Rows, []string{
			d.RequestID,
			string(d.Mode),
			string(d.Platform),
			string(d.Category),
			string(d.Aspect),
			d.ProviderPlan.ProviderID,
			strings.Join(d.Safety.Reasons, ","),
		})
	}
	return t
}

func boolText(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
