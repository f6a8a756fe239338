package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/fundtrail/internal/datasource"
	"github.com/vanderheijden86/fundtrail/pkg/branch"
	"github.com/vanderheijden86/fundtrail/pkg/config"
	"github.com/vanderheijden86/fundtrail/pkg/debug"
	"github.com/vanderheijden86/fundtrail/pkg/metrics"
	"github.com/vanderheijden86/fundtrail/pkg/trail"
	"github.com/vanderheijden86/fundtrail/pkg/ui"
	"github.com/vanderheijden86/fundtrail/pkg/watcher"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// sourceFlags select where a case is read from. At most one of server, db
// and file is honoured, in the order file, db, server.
type sourceFlags struct {
	server string
	db     string
	file   string
	holds  string
}

// app carries state shared by every subcommand.
type app struct {
	cfg     config.Config
	src     sourceFlags
	stats   bool
	noIFSC  bool
	cfgPath string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var saveAs string

	root := &cobra.Command{
		Use:   "fundtrail [view] ACK",
		Short: "Explore the fund trail of a cyber-fraud complaint",
		Long: `fundtrail shows how money moved from victim accounts through layers of
mule accounts, lets you search for an account, inspect and edit KYC details,
and review the put-on-hold transactions of a complaint.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.stats {
				metrics.WriteReport(cmd.ErrOrStderr())
			}
			debug.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return a.runView(cmd, args[0], saveAs)
		},
	}
	root.SetErr(os.Stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.src.server, "server", "", "Fund-trail API base URL (default from config or FUNDTRAIL_SERVER)")
	pf.StringVar(&a.src.db, "db", "", "Read the case from a local case database")
	pf.StringVar(&a.src.file, "file", "", "Read the case from a saved graph JSON document")
	pf.StringVar(&a.src.holds, "holds", "", "Hold rows JSON file to pair with --file")
	pf.BoolVar(&a.stats, "stats", false, "Print timing and cache statistics on exit")
	pf.BoolVar(&a.noIFSC, "no-ifsc", false, "Skip branch lookups; branches show Unknown")
	pf.StringVar(&a.cfgPath, "config", "", "Config file (default "+config.ConfigPath()+")")
	root.MarkFlagsMutuallyExclusive("server", "db", "file")

	view := &cobra.Command{
		Use:   "view ACK",
		Short: "Open the interactive fund-trail viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runView(cmd, args[0], saveAs)
		},
	}
	for _, c := range []*cobra.Command{root, view} {
		c.Flags().StringVar(&saveAs, "save-case", "", "Remember this case under a name in the config file")
	}

	root.AddCommand(
		view,
		newHoldsCmd(a),
		newPathCmd(a),
		newExportCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) loadConfig() error {
	var err error
	if a.cfgPath != "" {
		a.cfg, err = config.LoadFrom(a.cfgPath)
		a.cfg.ApplyEnv()
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if a.stats {
		metrics.SetEnabled(true)
	}
	return nil
}

// resolve maps a case name or acknowledgement number to the ack and the
// source description to read it from.
func (a *app) resolve(key string) (string, datasource.DataSource, error) {
	ack := strings.TrimSpace(key)
	location := ""
	if cs := a.cfg.FindCase(key); cs != nil {
		ack = cs.Ack
		location = cs.Source
	}
	if ack == "" {
		return "", datasource.DataSource{}, errors.New("acknowledgement number is required")
	}

	switch {
	case a.src.file != "":
		return ack, datasource.DataSource{Type: datasource.SourceTypeFile, Location: a.src.file, HoldsPath: a.src.holds}, nil
	case a.src.db != "":
		return ack, datasource.DataSource{Type: datasource.SourceTypeSQLite, Location: a.src.db}, nil
	case a.src.server != "":
		location = a.src.server
	case location == "":
		location = a.cfg.Server.URL
	}
	if location == "" {
		return "", datasource.DataSource{}, errors.New("no source: pass --server, --db or --file")
	}
	ds := datasource.Detect(location)
	if ds.Type == datasource.SourceTypeFile {
		ds.HoldsPath = a.src.holds
	}
	return ack, ds, nil
}

func (a *app) open(key string) (string, datasource.DataSource, datasource.Source, error) {
	ack, ds, err := a.resolve(key)
	if err != nil {
		return "", ds, nil, err
	}
	src, err := datasource.Open(ds, datasource.WithTimeout(a.cfg.Server.Timeout))
	if err != nil {
		return "", ds, nil, fmt.Errorf("open %s: %w", ds, err)
	}
	debug.Log("source: %s ack=%s", ds, ack)
	return ack, ds, src, nil
}

// branches returns the IFSC branch cache, or nil when lookups are off.
func (a *app) branches() *branch.Cache {
	if a.noIFSC || a.cfg.IFSC.Disabled || a.cfg.IFSC.URL == "" {
		return nil
	}
	var opts []branch.HTTPOption
	if a.cfg.IFSC.RatePerSec > 0 {
		opts = append(opts, branch.WithRateLimit(a.cfg.IFSC.RatePerSec, a.cfg.IFSC.Burst))
	}
	c := branch.NewCache(branch.NewHTTPLookup(a.cfg.IFSC.URL, opts...))
	if a.cfg.IFSC.Concurrency > 0 {
		c.SetConcurrency(a.cfg.IFSC.Concurrency)
	}
	return c
}

func (a *app) treeOptions() []trail.Option {
	if a.cfg.Tree.BurstThreshold == 0 {
		return nil
	}
	return []trail.Option{trail.WithBurstThreshold(a.cfg.Tree.BurstThreshold)}
}

// loadTree fetches and prepares the tree with branch names filled in.
func (a *app) loadTree(ctx context.Context, src datasource.Source, ack string) (*trail.Tree, error) {
	t, err := datasource.LoadTree(ctx, src, ack, a.treeOptions()...)
	if err != nil {
		return nil, err
	}
	branch.EnrichTree(ctx, a.branches(), t)
	return t, nil
}

func (a *app) runView(cmd *cobra.Command, key, saveAs string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("view needs an interactive terminal; use holds, path or export for scripted output")
	}

	ack, ds, src, err := a.open(key)
	if err != nil {
		return err
	}
	defer src.Close()

	if saveAs != "" {
		a.cfg.RememberCase(config.Case{Name: saveAs, Ack: ack, Source: ds.Location})
		if err := a.saveConfig(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not save case: %v\n", err)
		}
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var w *watcher.Watcher
	if fs, ok := src.(*datasource.FileSource); ok {
		w, err = watcher.New(fs.Paths(), watcher.WithOnError(func(err error) {
			debug.Log("watcher: %v", err)
		}))
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	m := ui.NewModel(ui.Options{
		Source:         src,
		Ack:            ack,
		Branches:       a.branches(),
		BurstThreshold: a.cfg.Tree.BurstThreshold,
		ClickDebounce:  a.cfg.Tree.ClickDebounce,
		Viewer:         a.cfg.UI.Viewer,
		StartView:      a.cfg.UI.DefaultView,
		ExportDir:      a.cfg.ExportDir(),
		ExportFormat:   a.cfg.Export.Format,
		Watcher:        w,
		HoldsFile:      ds.HoldsPath,
	})
	if err := runTUIProgram(m, a.cfg.MouseEnabled()); err != nil {
		return fmt.Errorf("running fund trail viewer: %w", err)
	}
	return nil
}

func (a *app) saveConfig() error {
	if a.cfgPath != "" {
		return config.SaveTo(a.cfg, a.cfgPath)
	}
	return config.Save(a.cfg)
}

func runTUIProgram(m ui.Model, mouse bool) error {
	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	}
	if mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, opts...)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated runs: set FUNDTRAIL_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("FUNDTRAIL_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}
				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}

// userError prints the message a viewer would show for load failures.
func userError(w io.Writer, err error) error {
	fmt.Fprintln(w, datasource.UserMessage(err))
	return err
}
