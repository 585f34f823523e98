// File: cmd/watch.go
package cmd

import (
	"fmt"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/stack-replayer/internal/observability"
	"github.com/xkilldash9x/stack-replayer/internal/watch"
)

func newWatchCmd() *cobra.Command {
	opts := &runOptions{}
	var file string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a log file and replay every stack trace written to it",
		Long: `Follows the log from its current end. Each stack trace that appears is
replayed and reported as one JSON line on stdout. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			logger := observability.GetLogger()

			path, err := homedir.Expand(file)
			if err != nil {
				return fmt.Errorf("failed to expand log path %s: %w", file, err)
			}

			base, err := opts.baseContext(logger)
			if err != nil {
				return err
			}

			replayer, cleanup, err := newReplayer(ctx, cfg, logger, opts.dryRun(cfg))
			if err != nil {
				return err
			}
			defer cleanup()

			w := watch.New(logger, cfg.Watch, replayer, cmd.OutOrStdout(), base.ProjectRoot, base.Metadata)
			return w.Watch(ctx, path)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "log file to follow (required)")
	_ = cmd.MarkFlagRequired("file")
	opts.addFlags(cmd)
	return cmd
}
