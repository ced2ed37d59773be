package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/v0xg/formfill/internal/ai"
	"github.com/v0xg/formfill/internal/autofill"
	"github.com/v0xg/formfill/internal/browser"
	"github.com/v0xg/formfill/internal/config"
	"github.com/v0xg/formfill/internal/console"
	"github.com/v0xg/formfill/internal/fill"
	"github.com/v0xg/formfill/internal/form"
	"github.com/v0xg/formfill/internal/observability"
	"github.com/v0xg/formfill/internal/reconcile"
	"github.com/v0xg/formfill/internal/store"
)

var (
	cfgFile string
	verbose bool
	v       = config.NewViper()
)

func main() {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "formfill [url]",
		Short: "Detect web form fields and fill them from saved answers",
		Long: `formfill opens a page in a browser, detects the fields of every form,
asks once for any answer it has not seen before, saves the answers to a local
file and fills the forms.

Example:
  formfill https://example.com/signup
  formfill --dry-run https://example.com/signup`,
		Args:          cobra.MaximumNArgs(1),
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default: ./formfill.yaml if present)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Show debug logs")
	flags.String("store", store.DefaultPath, "File holding saved answers")
	flags.String("scope", "name", "Answer keying: name, or form (per site and form)")
	flags.String("policy", "missing", "When to prompt: missing, or empty-store")
	flags.Bool("headless", false, "Run the browser without a window")
	flags.String("profile", "", "Chrome/Chromium profile directory for authenticated sessions (close browser first)")
	flags.Duration("timeout", form.DefaultTimeout, "How long to wait for a form to appear")
	flags.String("screenshot", "", "Save a screenshot of the filled page to this PNG file")
	flags.String("provider", "", "AI provider for suggested answers: claude, openai (default: none)")
	flags.String("model", "", "Specific model override")
	flags.Bool("dry-run", false, "Only list the detected fields")

	bindings := map[string]string{
		"store.path":           "store",
		"store.scope":          "scope",
		"prompt.policy":        "policy",
		"browser.headless":     "headless",
		"browser.profile_dir":  "profile",
		"browser.form_timeout": "timeout",
		"browser.screenshot":   "screenshot",
		"ai.provider":          "provider",
		"ai.model":             "model",
		"dry_run":              "dry-run",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		v.Set("url", args[0])
	}
	if verbose {
		v.Set("logger.level", "debug")
	}

	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	observability.InitializeLogger(cfg.Logger)
	defer observability.Sync()
	logger := observability.GetLogger().With(zap.String("run_id", uuid.NewString()))
	logger.Debug("Starting formfill",
		zap.String("url", cfg.URL),
		zap.String("store", cfg.Store.Path),
		zap.String("scope", cfg.Store.Scope),
		zap.String("policy", cfg.Prompt.Policy))

	ctx := cmd.Context()
	printer := console.NewPrinter(os.Stdout)
	prompter := console.NewPrompter(os.Stdin, os.Stdout)

	st, err := store.Load(cfg.Store.Path)
	if err != nil {
		return err
	}
	logger.Debug("Loaded answers", zap.Int("count", st.Len()))

	engineOpts := []reconcile.Option{
		reconcile.WithPolicy(cfg.Policy()),
		reconcile.WithScope(cfg.Scope()),
		reconcile.WithLogger(logger),
	}
	if cfg.AI.Provider != "" {
		provider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Model)
		if err != nil {
			return fmt.Errorf("AI provider init failed: %w", err)
		}
		engineOpts = append(engineOpts, reconcile.WithSuggester(provider))
	}

	printer.Step("Launching browser")
	session, err := browser.Launch(browser.Options{
		Bin:          cfg.Browser.Bin,
		ProfileDir:   cfg.Browser.ProfileDir,
		Headless:     cfg.Browser.Headless,
		Width:        cfg.Browser.Width,
		Height:       cfg.Browser.Height,
		SettleDelay:  cfg.Browser.SettleDelay,
		FieldTimeout: cfg.Browser.FieldTimeout,
	})
	if err != nil {
		printer.Failed()
		return err
	}
	defer session.Close()
	printer.Done("")

	pipeline := &autofill.Pipeline{
		Session:   session,
		Extractor: form.NewExtractor(session, cfg.Browser.FormTimeout),
		Engine:    reconcile.New(st, prompter, engineOpts...),
		Filler: fill.New(st,
			fill.WithScope(cfg.Scope()),
			fill.WithOutput(os.Stdout),
			fill.WithLogger(logger)),
		Printer: printer,
		Logger:  logger,
		DryRun:  cfg.DryRun,
	}

	summary, err := pipeline.Run(ctx, cfg.URL)
	if err != nil {
		logger.Error("Run failed", zap.Error(err))
		return err
	}

	if cfg.Browser.Screenshot != "" {
		saveScreenshot(printer, logger, session, cfg.Browser.Screenshot, cfg.Browser.ScreenshotWidth)
	}

	if !cfg.DryRun {
		printer.Success("Filled %d fields on %s", summary.Filled(), summary.URL)
	}

	// Leave the filled page up for review and submission
	if cfg.Browser.KeepOpen && !cfg.Browser.Headless {
		_, _ = prompter.Text(ctx, "Press Enter to close the browser", "")
	}
	return nil
}

// saveScreenshot is best effort; a failure does not fail the run
func saveScreenshot(printer *console.Printer, logger *zap.Logger, session *browser.RodSession, path string, width uint) {
	printer.Step("Saving screenshot")
	size, err := session.Screenshot(path, width)
	if err != nil {
		printer.Failed()
		logger.Warn("Screenshot failed", zap.Error(err))
		return
	}
	printer.Done("%s, %.1f KB", path, float64(size)/1024)
}
