package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkfold/internal/app"
	"github.com/MrSnakeDoc/linkfold/internal/config"
	"github.com/MrSnakeDoc/linkfold/internal/engine"
)

func newResolveCmd(opts *resolveOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve [url|share text]...",
		Short: "Resolve share links to canonical URLs",
		Long: `Resolve prints the platform, status and canonical URL of every argument.
Arguments may be full share texts; the first http(s) URL in each is used.
Without arguments, one input per line is read from stdin.

Examples:
  linkfold resolve https://youtu.be/dQw4w9WgXcQ
  linkfold resolve --json "看看这个 https://v.douyin.com/iRNBho6u/ 复制此链接"
  cat links.txt | linkfold resolve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.newLogger()
			cfg := &config.Config{}
			opts.apply(cmd.Flags(), cfg)
			res, err := app.NewResolver(cfg, log, true)
			if err != nil {
				return err
			}
			eng := app.NewEngine(res, log)

			inputs := args
			if len(inputs) == 0 {
				if inputs, err = readLines(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			for _, in := range inputs {
				raw := in
				if u, ok := engine.ExtractURL(in); ok {
					raw = u
				}

				link, err := eng.Resolve(cmd.Context(), raw)
				if err != nil {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", in, err)
					continue
				}

				if asJSON {
					if err := enc.Encode(link); err != nil {
						return err
					}
					continue
				}
				status := string(link.Status)
				if link.Failed() {
					status += "(" + string(link.Failure) + ")"
				}
				_, _ = fmt.Fprintf(out, "%s\t%s\t%s\n", link.Platform, status, link.CanonicalURL)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per input")
	return cmd
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}
