// Command resumepdf serves the resume-to-PDF API or runs one-shot
// conversions from the command line.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wudi/resumepdf/config"
	"github.com/wudi/resumepdf/convert"
	"github.com/wudi/resumepdf/ctxlog"
	"github.com/wudi/resumepdf/httpx"
	"github.com/wudi/resumepdf/ocr/tesseract"
	"github.com/wudi/resumepdf/resumeio"
	"github.com/wudi/resumepdf/server"
	"github.com/wudi/resumepdf/store"
)

const userAgent = "resumepdf/1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "resumepdf: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "resumepdf",
		Short:         "Convert resume.io resumes into searchable PDFs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	root.AddCommand(serveCmd(&configPath), fetchCmd(&configPath))
	return root
}

func logLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildConverter(cfg config.Config) *convert.Converter {
	var client httpx.BasicClient = &http.Client{Timeout: cfg.HTTPTimeout.Std()}
	client = &httpx.WithUserAgent{BasicClient: client, UserAgent: userAgent}
	client = &httpx.RetryClient{BasicClient: client, Attempts: cfg.Retries, Backoff: cfg.RetryBackoff.Std()}
	if cfg.ResponseCacheTTL.Std() > 0 {
		client = httpx.NewCachedClient(client, httpx.NewTTLCache(cfg.ResponseCacheTTL.Std()))
	}
	upstream := resumeio.NewClient(client)
	upstream.BaseURL = cfg.Upstream
	return convert.New(upstream, tesseract.New())
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := ctxlog.NewJSON(os.Stdout, logLevel(cfg.LogLevel))
			st, err := store.NewOS(cfg.FilesDir, cfg.StoreTTL.Std())
			if err != nil {
				return err
			}
			if err := st.CheckWritable(); err != nil {
				return err
			}
			srv := server.New(cfg, buildConverter(cfg), st, log)
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
}

func fetchCmd(configPath *string) *cobra.Command {
	var (
		output string
		flat   bool
		size   int
		langs  []string
	)
	cmd := &cobra.Command{
		Use:   "fetch <id|url>",
		Short: "Convert one resume to a local PDF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := ctxlog.NewText(os.Stderr, logLevel(cfg.LogLevel))
			ctx := ctxlog.WithLogger(cmd.Context(), log)

			id, err := resumeio.ParseID(args[0])
			if err != nil {
				return err
			}
			opts := convert.Options{
				Searchable:    !flat,
				Extension:     cfg.ImageExtension,
				ImageSize:     cfg.ImageSize,
				Languages:     cfg.Languages,
				MinConfidence: cfg.MinConfidence,
				Concurrency:   cfg.Concurrency,
			}
			if size > 0 {
				opts.ImageSize = size
			}
			if len(langs) > 0 {
				opts.Languages = langs
			}
			pdf, err := buildConverter(cfg).Convert(ctx, id, opts)
			if err != nil {
				return err
			}
			if output == "" {
				output = id + ".pdf"
			}
			if err := os.WriteFile(output, pdf, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, len(pdf))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <id>.pdf)")
	cmd.Flags().BoolVar(&flat, "flat", false, "skip the OCR text layer")
	cmd.Flags().IntVar(&size, "size", 0, "page image pixel size override")
	cmd.Flags().StringSliceVar(&langs, "lang", nil, "OCR language hints")
	return cmd
}
