// File: cmd/replay.go
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stack-replayer/api/schemas"
	"github.com/xkilldash9x/stack-replayer/internal/config"
	"github.com/xkilldash9x/stack-replayer/internal/observability"
	"github.com/xkilldash9x/stack-replayer/internal/replay"
	"github.com/xkilldash9x/stack-replayer/internal/reporting"
)

type replayOptions struct {
	runOptions
	logPaths    []string
	jsonOutput  bool
	format      string
	output      string
	concurrency int
}

// logInput is one error log and where it came from.
type logInput struct {
	source  string
	content string
}

func newReplayCmd() *cobra.Command {
	opts := &replayOptions{}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Explain an error log and generate a script that reproduces it",
		Long: `Parses each error log, explains the failure, lists reproduction steps and
generates a standalone replay script. With --run the script is executed in a
throwaway directory and the command exits non-zero when the bug did not
reproduce. Without --log the log is read from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("concurrency") {
				if opts.concurrency <= 0 {
					return fmt.Errorf("--concurrency must be a positive integer")
				}
				cfg.Replay.Concurrency = opts.concurrency
			}
			return runReplay(cmd, cfg, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.logPaths, "log", "l", nil, "path to an error log file; may be repeated (reads stdin if omitted)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "output JSON only (no pretty formatting); same as --format json")
	cmd.Flags().StringVar(&opts.format, "format", "text", "report format: text, json or sarif")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "maximum replays in flight (default from replay.concurrency)")
	opts.runOptions.addFlags(cmd)
	return cmd
}

func runReplay(cmd *cobra.Command, cfg *config.Config, opts *replayOptions) error {
	ctx := cmd.Context()
	logger := observability.GetLogger()

	if opts.jsonOutput {
		opts.format = "json"
	}
	switch opts.format {
	case "text", "json", "sarif":
	default:
		return fmt.Errorf("unsupported output format: %s", opts.format)
	}

	logs, err := readLogs(cmd.InOrStdin(), opts.logPaths)
	if err != nil {
		return err
	}

	base, err := opts.baseContext(logger)
	if err != nil {
		return err
	}
	contexts := make([]schemas.RunContext, len(logs))
	for i, log := range logs {
		contexts[i] = base
		contexts[i].ErrorLog = log.content
	}

	dryRun := opts.dryRun(cfg)
	replayer, cleanup, err := newReplayer(ctx, cfg, logger, dryRun)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("Replaying error logs.", zap.Int("logs", len(logs)), zap.Bool("dry_run", dryRun))
	results, err := replayer.ReplayAll(ctx, contexts, cfg.Replay.Concurrency)
	if err != nil {
		return err
	}

	if err := writeReport(cmd, opts, logs, contexts, results); err != nil {
		return err
	}

	if !dryRun {
		for i, result := range results {
			if result.SandboxResult != nil && !result.SandboxResult.Reproduced {
				logger.Warn("Replay script did not reproduce the failure.", zap.String("log", logs[i].source))
				return errNotReproduced
			}
		}
	}
	return nil
}

// readLogs loads every log named in paths, or stdin when there are none.
func readLogs(stdin io.Reader, paths []string) ([]logInput, error) {
	var logs []logInput
	if len(paths) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read error log from stdin: %w", err)
		}
		logs = append(logs, logInput{source: "stdin", content: string(data)})
	}

	for _, path := range paths {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("failed to expand log path %s: %w", path, err)
		}
		data, err := os.ReadFile(expanded)
		if err != nil {
			return nil, fmt.Errorf("failed to read error log: %w", err)
		}
		logs = append(logs, logInput{source: expanded, content: string(data)})
	}

	for _, log := range logs {
		if strings.TrimSpace(log.content) == "" {
			return nil, fmt.Errorf("%s: %w", log.source, replay.ErrEmptyLog)
		}
	}
	return logs, nil
}

// writeReport renders results in the requested format.
func writeReport(cmd *cobra.Command, opts *replayOptions, logs []logInput, contexts []schemas.RunContext, results []*schemas.Result) error {
	output, err := homedir.Expand(opts.output)
	if err != nil {
		return fmt.Errorf("failed to expand output path %s: %w", opts.output, err)
	}

	reporter, err := reporting.New(opts.format, output, cmd.OutOrStdout(), Version, observability.GetLogger())
	if err != nil {
		return err
	}

	for i, result := range results {
		entry := reporting.Entry{Source: logs[i].source, Context: contexts[i], Result: result}
		if err := reporter.Write(entry); err != nil {
			_ = reporter.Close()
			return err
		}
	}
	return reporter.Close()
}
