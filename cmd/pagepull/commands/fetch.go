package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pagepull/pagepull/internal/config"
	"github.com/pagepull/pagepull/internal/engine"
	"github.com/pagepull/pagepull/internal/identity"
	"github.com/pagepull/pagepull/internal/logger"
	"github.com/pagepull/pagepull/internal/output"
	"github.com/pagepull/pagepull/internal/render"
	"github.com/pagepull/pagepull/internal/session"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch URLs and extract their content",
	Long: `Fetch downloads each URL, picks the extraction path from the response
content type and emits one record per URL. Failed URLs produce error
records rather than aborting the batch.

Examples:
  # Single page to stdout
  pagepull fetch -u "https://example.com/article"

  # Batch with links, streamed as JSONL to a file
  pagepull fetch -u "https://a.com" -u "https://b.com" \
      --links --format jsonl -o results.jsonl

  # Patient retries against a flaky host
  pagepull fetch -u "https://flaky.example.com" \
      --max-attempts 10 --retry-strategy random_jitter`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	flags := fetchCmd.Flags()

	// URL inputs
	flags.StringSliceP("url", "u", nil, "URL(s) to fetch (can be repeated)")
	flags.Bool("links", false, "include outbound links in each record")

	// Transport settings
	flags.Duration("timeout", 30*time.Second, "request timeout")
	flags.Int("max-redirects", 10, "max redirects to follow")
	flags.String("max-body-size", "10MB", "max response body size (e.g. 10MB, 0=unlimited)")
	flags.String("max-content-size", "50MB", "max content size accepted for extraction (0=unlimited)")

	// Retry settings
	flags.Int("max-attempts", 5, "max fetch attempts per URL")
	flags.String("retry-strategy", "exponential_backoff",
		"retry delay strategy: exponential_backoff, linear_progression, fibonacci_sequence, random_jitter")
	flags.Duration("retry-base-delay", 2*time.Second, "base delay between retries")

	// Extraction settings
	flags.Int("max-text-length", 2_000_000, "max extracted text length before truncation")
	flags.Int("max-links", 100, "max outbound links kept per page")

	// Rendering settings
	flags.Bool("render", false, "allow headless-browser rendering for JavaScript-heavy pages")
	flags.Duration("render-timeout", 60*time.Second, "headless render timeout")

	// Output settings
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", "json", "output format: json, jsonl, yaml")
	flags.Bool("pretty", true, "pretty-print JSON output")

	// Bind to viper so the config file and env vars can set the same keys
	_ = viper.BindPFlag("fetch.timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("fetch.max_redirects", flags.Lookup("max-redirects"))
	_ = viper.BindPFlag("fetch.max_body_size", flags.Lookup("max-body-size"))
	_ = viper.BindPFlag("fetch.max_content_size", flags.Lookup("max-content-size"))
	_ = viper.BindPFlag("retry.max_attempts", flags.Lookup("max-attempts"))
	_ = viper.BindPFlag("retry.strategy", flags.Lookup("retry-strategy"))
	_ = viper.BindPFlag("retry.base_delay", flags.Lookup("retry-base-delay"))
	_ = viper.BindPFlag("extract.max_text_length", flags.Lookup("max-text-length"))
	_ = viper.BindPFlag("extract.max_links", flags.Lookup("max-links"))
	_ = viper.BindPFlag("render.enabled", flags.Lookup("render"))
	_ = viper.BindPFlag("render.timeout", flags.Lookup("render-timeout"))
	_ = viper.BindPFlag("output.format", flags.Lookup("format"))
	_ = viper.BindPFlag("output.pretty", flags.Lookup("pretty"))
	_ = viper.BindPFlag("output.file", flags.Lookup("output"))
}

func runFetch(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	urls, _ := cmd.Flags().GetStringSlice("url")
	if len(urls) == 0 {
		return cmd.Help()
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		logger.Error("configuration rejected", "error", err)
		return err
	}
	logger.Debug("configuration loaded",
		"attempts", cfg.Retry.MaxAttempts,
		"strategy", cfg.Retry.Strategy,
		"render", cfg.Render.Enabled)

	registry := session.NewRegistry(identity.DefaultPool(), cfg.Session())

	var renderer render.Renderer
	if cfg.Render.Enabled {
		renderer = render.NewChrome(cfg.Render.Timeout)
	}

	eng, err := engine.New(cfg.Engine(), registry, renderer)
	if err != nil {
		logger.Error("failed to create engine", "error", err)
		return err
	}
	defer func() { _ = eng.Close() }()

	outFile := os.Stdout
	if cfg.Output.File != "" {
		f, err := os.Create(cfg.Output.File) //#nosec G304 -- CLI tool writes to user-specified output file
		if err != nil {
			logger.Error("failed to create output file", "path", cfg.Output.File, "error", err)
			return err
		}
		defer func() { _ = f.Close() }()
		outFile = f
	}

	writer, err := output.NewWriter(outFile, output.Format(cfg.Output.Format), cfg.Output.Pretty)
	if err != nil {
		logger.Error("failed to create output writer", "format", cfg.Output.Format, "error", err)
		return err
	}
	defer func() { _ = writer.Close() }()

	wantLinks, _ := cmd.Flags().GetBool("links")

	logger.Info("starting fetch", "urls", len(urls))

	succeeded := 0
	failed := 0
	for _, u := range urls {
		if ctx.Err() != nil {
			logger.Warn("fetch interrupted", "remaining", len(urls)-succeeded-failed)
			break
		}

		res, err := eng.Fetch(ctx, u, engine.Options{WantLinks: wantLinks})
		if err != nil {
			logger.Error("fetch failed", "url", u, "error", err)
			failed++
			if werr := writer.Write(output.ErrorRecord(u, err)); werr != nil {
				logger.Error("failed to write output", "error", werr)
				return werr
			}
			continue
		}

		succeeded++
		if err := writer.Write(output.SuccessRecord(res, eng.RetryHistory())); err != nil {
			logger.Error("failed to write output", "error", err)
			return err
		}
	}

	logger.Info("fetch complete", "succeeded", succeeded, "failed", failed)
	return nil
}
