package cli

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/csheth/critic/internal/api"
	"github.com/csheth/critic/internal/config"
	"github.com/csheth/critic/internal/critique"
	"github.com/csheth/critic/internal/logger"
	"github.com/csheth/critic/internal/report"
)

// app carries the state shared by every subcommand of one command tree.
type app struct {
	version string
	commit  string
	date    string

	configFile string
	verbose    bool
	baseURL    string

	cfg *config.Config
	log *logger.Logger
}

// NewRootCommand creates the root command with all subcommands. Running it
// without a subcommand starts the interactive workspace.
func NewRootCommand(version, commit, date string) *cobra.Command {
	a := &app{version: version, commit: commit, date: date}

	rootCmd := &cobra.Command{
		Use:   "critic",
		Short: "Examine an argument from four critical-thinking perspectives",
		Long: `critic sends an argument, typed or as a PDF, to a critique service and
shows what science, economics, sociology and ethics make of it.

Without a subcommand it opens the interactive workspace. Use "critic analyze"
for one-shot runs in scripts and "critic watch" to re-run on every save.`,
		SilenceUsage: true,
		Version:      version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd, tuiOptions{})
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file (default ./.critic.yaml, then ~/.config/critic/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "critique service URL (overrides config)")

	rootCmd.AddCommand(newTUICommand(a))
	rootCmd.AddCommand(newAnalyzeCommand(a))
	rootCmd.AddCommand(newWatchCommand(a))
	rootCmd.AddCommand(newHealthCommand(a))
	rootCmd.AddCommand(newPerspectivesCommand())
	rootCmd.AddCommand(newVersionCommand(a))

	return rootCmd
}

// config loads configuration once per command tree and applies flag overrides.
func (a *app) config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := config.NewLoader().LoadConfig(a.configFile)
	if err != nil {
		return nil, err
	}
	if url := strings.TrimSpace(a.baseURL); url != "" {
		cfg.Service.BaseURL = url
	}
	if a.verbose {
		cfg.Logging.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	a.log = logger.New("critic", func() bool { return a.cfg.Logging.Verbose })
	return cfg, nil
}

func (a *app) client(cfg *config.Config) (api.Client, error) {
	return api.New(api.Config{
		BaseURL: cfg.Service.BaseURL,
		Prefix:  cfg.Service.APIPrefix,
	})
}

// session wires a fresh Session to the configured service and report directory.
func (a *app) session(cfg *config.Config, reportDir string) (*critique.Session, api.Client, error) {
	client, err := a.client(cfg)
	if err != nil {
		return nil, nil, err
	}
	if reportDir == "" {
		reportDir = cfg.Output.ReportDir
	}
	saver, err := report.NewDirSaver(reportDir)
	if err != nil {
		return nil, nil, err
	}
	session := critique.NewSession(client,
		critique.WithLogger(a.log.WithComponent("session")),
		critique.WithSaver(saver),
		critique.WithAnswerLength(cfg.AnswerLength()),
	)
	return session, client, nil
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "critic %s\n", a.version)
			fmt.Fprintf(out, "  commit: %s\n", a.commit)
			fmt.Fprintf(out, "  built:  %s\n", a.date)
			fmt.Fprintf(out, "  go:     %s\n", runtime.Version())
			fmt.Fprintf(out, "  os:     %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
