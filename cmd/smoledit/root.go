package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/smol-dev/smoledit/pkg/backup"
	"github.com/smol-dev/smoledit/pkg/config"
	"github.com/smol-dev/smoledit/pkg/diffview"
	"github.com/smol-dev/smoledit/pkg/engine"
	"github.com/smol-dev/smoledit/pkg/log"
)

var (
	// Flags
	configFile string
	rootDir    string
	debug      bool
	yes        bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "smoledit",
		Short:         "apply anchor-based edits from a generation service, reviewably",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default <root>/"+config.DefaultFile+")")
	cmd.PersistentFlags().StringVarP(&rootDir, "root", "r", "", "repository root (default working directory)")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "apply every file without prompting")

	cmd.AddCommand(newApplyCmd())
	cmd.AddCommand(newUndoCmd())
	cmd.AddCommand(newBackupsCmd())
	return cmd
}

// setupLogging configures zerolog based on flags.
func setupLogging() {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	zlog := zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &zlog
}

// runtime bundles the wired-up dependencies for one command invocation.
type runtime struct {
	ctx    context.Context
	cfg    *config.Config
	root   string
	store  *backup.Store
	undo   *backup.UndoStack
	logger *log.Logger
}

// newRuntime loads config and wires the engine's collaborators.
func newRuntime() (*runtime, error) {
	setupLogging()

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := log.New(os.Stdout, level)

	root := rootDir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Errorf("getting working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Errorf("resolving repository root: %w", err)
	}

	ctx := log.NewContext(context.Background(), logger)

	cfgPath := configFile
	if cfgPath == "" {
		cfgPath = filepath.Join(root, config.DefaultFile)
	}
	cfg, err := config.Load(ctx, cfgPath)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	if cfg.Root != "" {
		root, err = filepath.Abs(cfg.Root)
		if err != nil {
			return nil, errors.Errorf("resolving configured root: %w", err)
		}
	}

	return &runtime{
		ctx:    ctx,
		cfg:    cfg,
		root:   root,
		store:  backup.NewStore(root, cfg.BackupDir),
		undo:   backup.NewUndoStack(root),
		logger: logger,
	}, nil
}

// engine builds the edit engine with the review prompt as approver.
func (rt *runtime) engine() (*engine.Engine, error) {
	approver := promptApprover(os.Stdin, os.Stdout)
	if yes || rt.cfg.AutoApprove {
		approver = engine.ApproveAll
	}

	return engine.New(engine.Options{
		Root:         rt.root,
		Store:        rt.store,
		Undo:         rt.undo,
		Approver:     approver,
		MaxFileSize:  rt.cfg.MaxFileSize,
		ContextLines: rt.cfg.ContextLines,
		Protected:    rt.cfg.Protected,
	})
}

// promptApprover shows the colorized diff and asks for a y/N decision.
func promptApprover(in *os.File, out *os.File) engine.Approver {
	reader := bufio.NewReader(in)
	return func(ctx context.Context, path, diff string) (bool, error) {
		fmt.Fprintln(out)
		fmt.Fprint(out, diffview.Colorize(diff))
		fmt.Fprintf(out, "\nApply changes to %s? [y/N] ", path)

		answer, err := reader.ReadString('\n')
		if err != nil {
			return false, errors.Errorf("reading approval: %w", err)
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes", nil
	}
}
