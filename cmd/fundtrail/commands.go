package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vanderheijden86/fundtrail/internal/datasource"
	"github.com/vanderheijden86/fundtrail/internal/server"
	"github.com/vanderheijden86/fundtrail/pkg/branch"
	"github.com/vanderheijden86/fundtrail/pkg/debug"
	"github.com/vanderheijden86/fundtrail/pkg/export"
	"github.com/vanderheijden86/fundtrail/pkg/holds"
	"github.com/vanderheijden86/fundtrail/pkg/model"
	"github.com/vanderheijden86/fundtrail/pkg/trail"
	"github.com/vanderheijden86/fundtrail/pkg/version"
)

const cliTimeout = 2 * time.Minute

func newHoldsCmd(a *app) *cobra.Command {
	var filters []string
	var sortSpec string

	cmd := &cobra.Command{
		Use:   "holds ACK",
		Short: "Print the put-on-hold transactions of a complaint",
		Example: `  fundtrail holds 31234567890123 --filter bank=HDFC,ICICI --sort amount:desc
  fundtrail holds 31234567890123 --db cases.db --filter layer=N/A`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := holds.NewController()
			if err := applyHoldFlags(ctrl, filters, sortSpec); err != nil {
				return err
			}

			ack, _, src, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer src.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cliTimeout)
			defer cancel()
			rows, err := src.Holds(ctx, ack)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), datasource.MsgHoldsFailed)
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), datasource.MsgNoHolds)
				return nil
			}
			ctrl.Load(branch.EnrichHolds(ctx, a.branches(), rows))
			return writeHoldsTable(cmd.OutOrStdout(), ctrl.Rows())
		},
	}
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Keep rows whose column shows one of the values: col=v1,v2 (repeatable)")
	cmd.Flags().StringVar(&sortSpec, "sort", "", "Sort by column: col[:asc|desc]")
	return cmd
}

// applyHoldFlags turns --filter and --sort values into controller state.
func applyHoldFlags(ctrl *holds.Controller, filters []string, sortSpec string) error {
	for _, f := range filters {
		name, values, ok := strings.Cut(f, "=")
		if !ok {
			return fmt.Errorf("invalid --filter %q: want col=v1,v2", f)
		}
		col, ok := holds.ParseColumn(name)
		if !ok {
			return fmt.Errorf("unknown column %q", name)
		}
		var accepted []string
		for _, v := range strings.Split(values, ",") {
			if v = strings.TrimSpace(v); v != "" {
				accepted = append(accepted, v)
			}
		}
		ctrl.SetFilter(col, holds.NewSet(accepted...))
	}

	if sortSpec == "" {
		return nil
	}
	name, dir, _ := strings.Cut(sortSpec, ":")
	col, ok := holds.ParseColumn(name)
	if !ok {
		return fmt.Errorf("unknown column %q", name)
	}
	switch strings.ToLower(dir) {
	case "", "asc":
		ctrl.SetSort(col, holds.Ascending)
	case "desc":
		ctrl.SetSort(col, holds.Descending)
	default:
		return fmt.Errorf("invalid sort direction %q: want asc or desc", dir)
	}
	return nil
}

func writeHoldsTable(w io.Writer, rows []model.HoldRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	titles := make([]string, len(holds.Columns))
	for i, c := range holds.Columns {
		titles[i] = c.Title()
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))
	for _, r := range rows {
		cells := make([]string, len(holds.Columns))
		for i, c := range holds.Columns {
			cells[i] = holds.FormatValue(r, c)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func newPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path ACK ACCOUNT",
		Short: "Print the chain from the victim to an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, err := a.findPath(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			return writePath(cmd.OutOrStdout(), path)
		},
	}
}

// findPath loads the case and locates account in it.
func (a *app) findPath(cmd *cobra.Command, key, account string) (string, []*trail.Node, error) {
	ack, _, src, err := a.open(key)
	if err != nil {
		return "", nil, err
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cliTimeout)
	defer cancel()
	t, err := a.loadTree(ctx, src, ack)
	if err != nil {
		return "", nil, userError(cmd.ErrOrStderr(), err)
	}
	path := trail.FindPath(t.Root, account)
	if path == nil {
		return "", nil, fmt.Errorf("no path match for %s", strings.TrimSpace(account))
	}
	return ack, path, nil
}

func writePath(w io.Writer, path []*trail.Node) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LAYER\tACCOUNT\tBANK\tBRANCH\tAMOUNT")
	for _, n := range path {
		if n.Depth == 0 {
			continue
		}
		layer := "N/A"
		if n.DisplayLayer() >= 0 {
			layer = fmt.Sprint(n.DisplayLayer())
		}
		name := n.Data.Name.Trimmed()
		if n.VictimLabel != "" {
			name = n.VictimLabel + ": " + name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			layer, name, model.OrNA(n.Data.Bank), model.OrNA(n.Data.Branch), model.FormatINR(n.Data.Amount.OrZero()))
	}
	return tw.Flush()
}

func newExportCmd(a *app) *cobra.Command {
	var out, format, details string

	cmd := &cobra.Command{
		Use:   "export ACK ACCOUNT",
		Short: "Export the hold path of an account as SVG or PNG",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ack, path, err := a.findPath(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			if out == "" {
				ext := format
				if ext == "" {
					ext = a.cfg.Export.Format
				}
				out = filepath.Join(a.cfg.ExportDir(), fmt.Sprintf("hold_path_%s_%s.%s", ack, path[len(path)-1].Data.Name.Trimmed(), ext))
			}
			if err := export.SaveHoldPath(export.HoldPathOptions{Path: out, Format: format, Ack: ack, Nodes: path}); err != nil {
				return fmt.Errorf("export hold path: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)

			if details != "" {
				md := export.DetailsMarkdown(path[len(path)-1], export.DetailsOptions{Ack: ack, GeneratedAt: time.Now()})
				if err := os.WriteFile(details, []byte(md), 0o644); err != nil {
					return fmt.Errorf("write details: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", details)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (.svg or .png); default is the export directory")
	cmd.Flags().StringVar(&format, "format", "", "Image format: svg or png (default from the output extension)")
	cmd.Flags().StringVar(&details, "details", "", "Also write the account's details report as Markdown")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve --db FILE",
		Short: "Serve a local case database over the fund-trail API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.src.db == "" {
				return errors.New("serve needs --db")
			}
			store, err := datasource.OpenSQLite(a.src.db)
			if err != nil {
				return err
			}
			defer store.Close()

			logger := debug.Logger()
			if !debug.Enabled() {
				gin.SetMode(gin.ReleaseMode)
				if logger, err = zap.NewProduction(); err != nil {
					return err
				}
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("serving", zap.String("addr", addr), zap.String("db", store.Path()))
			return server.Run(ctx, addr, server.NewRouter(store, logger))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// No config needed.
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fundtrail %s\n", version.Version)
		},
	}
}
