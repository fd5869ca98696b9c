package main

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/spf13/cobra"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/cli"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/engine"
)

var generateFlags struct {
	file        string
	provider    string
	concurrency int
	noProgress  bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate images for one or more requests",
	Long: `Run requests through the full pipeline: decide, assemble, call the
provider, store the image and write alt text.

A single request object prints one result. A JSON array runs as a batch
with a progress bar on stderr and prints a summary table.

The command exits with status 3 when any request fell back.

Examples:
  # Generate one image
  imagery generate -f request.json

  # Run a batch on four workers against the stub provider
  imagery generate -f batch.json --concurrency 4 --provider stub -o json`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateFlags.file, "file", "f", "-", "request file (- for stdin)")
	generateCmd.Flags().StringVar(&generateFlags.provider, "provider", "", "override engine.default_provider")
	generateCmd.Flags().IntVar(&generateFlags.concurrency, "concurrency", 1, "batch workers")
	generateCmd.Flags().BoolVar(&generateFlags.noProgress, "no-progress", false, "disable the batch progress bar")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	reqs, batch, err := readRequests(cmd.InOrStdin(), generateFlags.file)
	if err != nil {
		return cli.NewCommandError("generate", err)
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	auditLog, err := openAudit(ctx, cfg)
	if err != nil {
		return cli.NewCommandError("generate", err)
	}
	defer auditLog.Close()

	st, err := buildStack(ctx, cfg, stackDeps{
		audit:    auditLog.sink(),
		logger:   logger,
		provider: generateFlags.provider,
	})
	if err != nil {
		return err
	}
	defer st.Close()

	var progress *cli.BatchProgress
	if batch && !generateFlags.noProgress {
		progress = cli.NewBatchProgress(cmd.ErrOrStderr())
		progress.Start(len(reqs))
	}

	results := make([]*engine.GenerationResult, len(reqs))
	workers := generateFlags.concurrency
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = st.engine.Generate(ctx, req)
			if progress != nil {
				progress.Done(results[i].OK)
			}
		}()
	}
	wg.Wait()
	if progress != nil {
		progress.Finish()
	}

	if batch {
		if err := render(cmd, results, resultTable(results)); err != nil {
			return err
		}
	} else if err := render(cmd, results[0], resultText(results[0])); err != nil {
		return err
	}

	for _, res := range results {
		if !res.OK {
			fe := &cli.FallbackError{RequestID: res.RequestID}
			if res.Error != nil {
				fe.Code = res.Error.Code
			}
			if res.Fallback != nil {
				fe.Reason = res.Fallback.Reason
			}
			return fe
		}
	}
	return nil
}

func resultText(res *engine.GenerationResult) cli.KeyValues {
	kv := cli.KeyValues{
		{"Request ID", res.RequestID},
		{"OK", boolText(res.OK)},
		{"Mode", string(res.Decision.Mode)},
	}
	if res.Image != nil {
		kv = append(kv,
			[2]string{"URL", res.Image.URL},
			[2]string{"Size", fmt.Sprintf("%dx%d", res.Image.Width, res.Image.Height)},
			[2]string{"Content Type", res.Image.ContentType},
			[2]string{"Alt Text", res.Image.AltText},
		)
	}
	if res.Fallback != nil {
		kv = append(kv, [2]string{"Fallback", res.Fallback.Reason})
	}
	if res.Error != nil {
		kv = append(kv,
			[2]string{"Error Code", res.Error.Code},
			[2]string{"Error", res.Error.Message},
		)
	}
	kv = append(kv, [2]string{"Total", strconv.FormatInt(res.TimingsMs[engine.StageTotal], 10) + "ms"})
	return kv
}

func resultTable(results []*engine.GenerationResult) cli.Table {
	t := cli.Table{Headers: []string{"REQUEST ID", "OK", "URL", "CODE", "TOTAL MS"}}
	for _, res := range results {
		url, code := "", ""
		if res.Image != nil {
			url = res.Image.URL
		}
		if res.Error != nil {
			code = res.Error.Code
		}
		t.Rows = append(t.Rows, []string{
			res.RequestID,
			boolText(res.OK),
			url,
			code,
			strconv.FormatInt(res.TimingsMs[engine.StageTotal], 10),
		})
	}
	return t
}
