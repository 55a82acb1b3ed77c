// Package cli implements the linkfold commands using Cobra.
package cli

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/MrSnakeDoc/linkfold/internal/config"
	"github.com/MrSnakeDoc/linkfold/internal/logger"
	"github.com/MrSnakeDoc/linkfold/internal/resolver"
	"github.com/MrSnakeDoc/linkfold/internal/version"
)

// resolveOptions are the flags shared by resolve and batch.
type resolveOptions struct {
	logLevel    string
	profileFile string
	timeout     time.Duration
	htmlRefresh bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &resolveOptions{}

	root := &cobra.Command{
		Use:   "linkfold",
		Short: "linkfold: resolve social media share links to canonical URLs",
		Long: `linkfold detects the platform of a share link (Douyin, YouTube, Bilibili or
any other site), expands short links with a single redirect hop and returns a
stable canonical URL.

Usage:
  linkfold serve
  linkfold resolve <url>... [flags]
  linkfold batch <file> [flags]`,
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	opts.bind(root.PersistentFlags())

	root.AddCommand(
		newServeCmd(),
		newResolveCmd(opts),
		newBatchCmd(opts),
	)
	return root
}

func (o *resolveOptions) bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.logLevel, "log-level", "error", "Log level for resolve and batch (debug, info, warn, error)")
	fs.StringVar(&o.profileFile, "profile", "", "Header profile YAML file")
	fs.DurationVar(&o.timeout, "timeout", resolver.DefaultTimeout, "Timeout of the single redirect hop")
	fs.BoolVar(&o.htmlRefresh, "html-refresh", false, "Follow <meta refresh> and canonical links on pages that do not redirect")
}

// apply copies the resolve flags onto cfg. Without --store cfg is empty and
// takes every value; a loaded config keeps its own values for flags the
// user did not set.
func (o *resolveOptions) apply(flags *pflag.FlagSet, cfg *config.Config) {
	if o.profileFile != "" {
		cfg.ProfileFile = o.profileFile
	}
	if cfg.ResolveTimeout <= 0 || flags.Changed("timeout") {
		cfg.ResolveTimeout = o.timeout
	}
	if flags.Changed("html-refresh") {
		cfg.ParseHTMLRefresh = o.htmlRefresh
	}
}

func (o *resolveOptions) newLogger() logger.Logger {
	return logger.New(o.logLevel, false)
}
