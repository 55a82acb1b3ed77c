package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkfold/internal/app"
	"github.com/MrSnakeDoc/linkfold/internal/batch"
	"github.com/MrSnakeDoc/linkfold/internal/config"
	"github.com/MrSnakeDoc/linkfold/internal/links"
	"github.com/MrSnakeDoc/linkfold/internal/utils"
)

type batchOptions struct {
	output  string
	store   bool
	delay   time.Duration
	maxRows int
}

func newBatchCmd(opts *resolveOptions) *cobra.Command {
	bo := &batchOptions{}
	def := batch.DefaultDelayPolicy()

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Resolve every link in a CSV or XLSX file",
		Long: `Batch reads a .csv, .txt or .xlsx table, resolves every cell that looks like
a link and writes the table back with <column>_long and <column>_platform
columns added. Links are resolved one at a time with a pause in between.

Examples:
  linkfold batch links.xlsx --output resolved.xlsx
  linkfold batch links.csv > resolved.csv
  linkfold batch links.csv --store --output resolved.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.newLogger()

			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer utils.Close(in)

			table, err := batch.Read(args[0], in)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			// the output format is checked before any network work
			var outFormat batch.Format = batch.FormatCSV
			if bo.output != "" {
				if outFormat, err = batch.FormatFor(bo.output); err != nil {
					return err
				}
			}

			cfg := &config.Config{}
			if bo.store {
				cfg = config.Load()
			}
			opts.apply(cmd.Flags(), cfg)

			res, err := app.NewResolver(cfg, log, true)
			if err != nil {
				return err
			}
			eng := app.NewEngine(res, log)

			var resolver batch.Resolver = eng
			if bo.store {
				store, err := app.OpenStore(cmd.Context(), cfg, log)
				if err != nil {
					return err
				}
				defer utils.CloseLogged(store, "store", log)
				resolver = links.Recorder{Service: links.NewService(eng, store, log)}
			}

			policy := def
			if cmd.Flags().Changed("delay") {
				policy = batch.DelayPolicy{Delay: bo.delay, LargeBatchDelay: bo.delay}
			}

			result, err := batch.NewProcessor(resolver, policy, bo.maxRows, log).Process(cmd.Context(), table)
			if err != nil {
				return err
			}

			if err := writeTable(cmd.OutOrStdout(), bo.output, outFormat, result.Processed); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), result.Message)
			return nil
		},
	}

	cmd.Flags().StringVarP(&bo.output, "output", "o", "", "Output file (.csv or .xlsx); CSV on stdout when empty")
	cmd.Flags().BoolVar(&bo.store, "store", false, "Also store every link in the configured LINKFOLD_STORE")
	cmd.Flags().DurationVar(&bo.delay, "delay", def.Delay, "Pause between two links (overrides the size-based default)")
	cmd.Flags().IntVar(&bo.maxRows, "max-rows", 0, "Refuse tables with more rows (0 = no limit)")
	return cmd
}

func writeTable(stdout io.Writer, path string, format batch.Format, t *batch.Table) (err error) {
	w := stdout
	if path != "" {
		f, cerr := os.Create(path)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	if format == batch.FormatXLSX {
		return batch.WriteXLSX(w, t)
	}
	return batch.WriteCSV(w, t)
}
