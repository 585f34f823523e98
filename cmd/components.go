// File: cmd/components.go
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stack-replayer/api/schemas"
	"github.com/xkilldash9x/stack-replayer/internal/config"
	"github.com/xkilldash9x/stack-replayer/internal/gitmeta"
	"github.com/xkilldash9x/stack-replayer/internal/llmclient"
	"github.com/xkilldash9x/stack-replayer/internal/replay"
	"github.com/xkilldash9x/stack-replayer/internal/sandbox"
	"github.com/xkilldash9x/stack-replayer/internal/scriptcheck"
	"github.com/xkilldash9x/stack-replayer/internal/synth"
)

// runOptions holds the flags shared by replay and watch.
type runOptions struct {
	root     string
	run      bool
	meta     []string
	commands []string
}

func (o *runOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.root, "root", "", "project root directory; used as the sandbox working directory")
	cmd.Flags().BoolVar(&o.run, "run", false, "execute the replay script in the sandbox (default: dry-run)")
	cmd.Flags().StringArrayVar(&o.meta, "meta", nil, "metadata as key=value (node_version, os, commit_hash or any extra key)")
	cmd.Flags().StringArrayVar(&o.commands, "command", nil, "a command that was run before the failure; may be repeated, earliest first")
}

// dryRun reports whether scripts should only be generated. replay.dry_run
// in the configuration wins over --run.
func (o *runOptions) dryRun(cfg *config.Config) bool {
	return cfg.Replay.DryRun || !o.run
}

// baseContext builds the RunContext shared by every log of one invocation.
func (o *runOptions) baseContext(logger *zap.Logger) (schemas.RunContext, error) {
	var rc schemas.RunContext

	if o.root != "" {
		root, err := homedir.Expand(o.root)
		if err != nil {
			return rc, fmt.Errorf("failed to expand project root: %w", err)
		}
		rc.ProjectRoot = root
	}

	metadata, err := parseMetadata(o.meta, o.commands)
	if err != nil {
		return rc, err
	}
	rc.Metadata = metadata

	gitmeta.Enrich(logger, &rc)
	return rc, nil
}

// parseMetadata turns key=value pairs into Metadata. Unknown keys go to Extra.
func parseMetadata(pairs, commands []string) (schemas.Metadata, error) {
	var metadata schemas.Metadata
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return schemas.Metadata{}, fmt.Errorf("invalid --meta value %q: expected key=value", pair)
		}

		switch strings.ToLower(key) {
		case "node_version", "nodeversion":
			metadata.NodeVersion = value
		case "os":
			metadata.OS = value
		case "commit_hash", "commithash":
			metadata.CommitHash = value
		default:
			if metadata.Extra == nil {
				metadata.Extra = make(map[string]any)
			}
			metadata.Extra[key] = value
		}
	}
	if len(commands) > 0 {
		metadata.RecentCommands = append([]string(nil), commands...)
	}
	return metadata, nil
}

// newReplayer assembles the synthesizer, script checker and sandbox. The
// returned cleanup releases the provider client, if any.
func newReplayer(ctx context.Context, cfg *config.Config, logger *zap.Logger, dryRun bool) (*replay.Replayer, func(), error) {
	client, err := llmclient.NewClient(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	var synthesizer synth.Synthesizer = synth.NewHeuristic()
	cleanup := func() {}
	if client != nil {
		logger.Info("Using reasoning provider for synthesis.", zap.String("provider", string(cfg.LLM.Provider)))
		synthesizer = synth.NewProvider(logger, client, schemas.GenerationOptions{
			Temperature: float64(cfg.LLM.Temperature),
			MaxTokens:   cfg.LLM.MaxTokens,
		})
		cleanup = func() {
			if err := client.Close(); err != nil {
				logger.Warn("Failed to close LLM client.", zap.Error(err))
			}
		}
	}

	replayer := replay.New(logger, synthesizer, sandbox.New(logger, cfg.Sandbox),
		replay.WithDryRun(dryRun),
		replay.WithScriptChecker(scriptcheck.New(logger)),
	)
	return replayer, cleanup, nil
}
