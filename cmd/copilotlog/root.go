package main

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/glabrego/copilotlog/internal/app"
	"github.com/glabrego/copilotlog/internal/config"
	"github.com/glabrego/copilotlog/internal/logging"
	"github.com/glabrego/copilotlog/internal/persist"
	"github.com/glabrego/copilotlog/internal/tui"
	"github.com/glabrego/copilotlog/internal/tui/platform"
	tuitheme "github.com/glabrego/copilotlog/internal/tui/theme"
	"github.com/glabrego/copilotlog/internal/watch"
)

type rootOptions struct {
	configPath string
	dbPath     string
	dropDir    string
	exportDir  string
	debug      bool

	stdout io.Writer
	stderr io.Writer
}

// session is an opened service plus the resources it owns.
type session struct {
	cfg config.Config
	log *logging.Logger
	svc *app.Service
}

func (s *session) Close() {
	if err := s.svc.Close(); err != nil {
		s.log.Error("close storage: %v", err)
	}
	_ = s.log.Close()
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "copilotlog",
		Short: "Keep, preview and share Copilot chat exports",
		Long:  "copilotlog stores chat-export JSON files locally and lets you browse, share and export them from the terminal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runTUI(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path (default ~/.config/copilotlog/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&opts.dropDir, "drop-dir", "", "folder watched for new chat exports")
	rootCmd.PersistentFlags().StringVar(&opts.exportDir, "export-dir", "", "default folder for HTML exports")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "write a debug log")

	rootCmd.AddCommand(
		newImportCmd(opts),
		newPasteCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newDeleteCmd(opts),
		newShareCmd(opts),
		newThemeCmd(opts),
		newExportCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// loadConfig applies flag overrides on top of config.Load.
func (o *rootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("config error: %w", err)
	}
	o.applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("config error: %w", err)
	}
	return cfg, nil
}

func (o *rootOptions) applyFlags(cfg *config.Config) {
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.dropDir != "" {
		cfg.DropDir = o.dropDir
	}
	if o.exportDir != "" {
		cfg.ExportDir = o.exportDir
	}
	if o.debug {
		cfg.Debug = true
	}
	if cfg.Debug && cfg.LogPath == "" {
		cfg.LogPath = config.DefaultLogPath()
	}
}

func (o *rootOptions) open(ctx context.Context, interactive bool) (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logging.Open(cfg.LogPath)
	if err != nil {
		return nil, err
	}
	if !interactive {
		log.SetErrorEcho(o.stderr)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	openCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	svc := app.Open(openCtx, cfg, log, app.WithPersistOptions(
		persist.WithSystemTheme(tuitheme.Detect),
		persist.WithThemeApplier(tuitheme.Apply),
	))
	log.Info("started (db=%s, drop=%s)", cfg.DBPath, cfg.DropDir)
	return &session{cfg: cfg, log: log, svc: svc}, nil
}

func (o *rootOptions) runTUI(ctx context.Context) error {
	s, err := o.open(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	modelOpts := tui.Options{
		ExportDir: s.cfg.ExportDir,
		Clipboard: platform.SystemClipboard(),
	}
	if s.cfg.DropDir != "" {
		w, err := watch.New(s.cfg.DropDir, 0)
		if err != nil {
			return fmt.Errorf("watch drop folder: %w", err)
		}
		defer w.Close()
		modelOpts.DropDir = w.Dir()
		modelOpts.DropDirEvents = w.Events()
		modelOpts.DropDirErrors = w.Errors()
	}

	program := tea.NewProgram(tui.NewModel(s.svc, modelOpts), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "copilotlog %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
