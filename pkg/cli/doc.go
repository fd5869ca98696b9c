/*
Package cli provides the helpers shared by the imagery commands: exit codes,
output formatting, batch progress and signal handling.

Exit Codes:

Commands return errors; main maps them to a process exit code with
ExitCode:

	0  success
	1  command failure
	2  configuration error
	3  generation fell back (no image produced)

Output Formatting:

Results print as text or JSON:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Values that implement Texter control their own text rendering.

Batch Progress:

	progress := cli.NewBatchProgress(os.Stderr)
	progress.Start(len(requests))
	for _, req := range requests {
		res := eng.Generate(ctx, req)
		progress.Done(res.OK)
	}
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
*/
package cli
