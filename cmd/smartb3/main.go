// SmartB3: stock prediction dashboard for B3-listed companies.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/smartb3/smartb3/api"
	"github.com/smartb3/smartb3/internal/config"
	"github.com/smartb3/smartb3/internal/dashboard"
	"github.com/smartb3/smartb3/internal/datasource"
	"github.com/smartb3/smartb3/internal/infra"
	"github.com/smartb3/smartb3/internal/viewmodel"
	"github.com/smartb3/smartb3/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set by PersistentPreRunE.
var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "smartb3",
	Short: "SmartB3 stock prediction dashboard for B3",
	Long: `SmartB3 shows model predictions, model rankings and error statistics
for companies listed on B3. It reads everything from the SmartB3
prediction backend and serves an interactive dashboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		logger = infra.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(companiesCmd)
	rootCmd.AddCommand(sectorsCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(serveCmd)
}

// --- Wiring ---

func newBackend() *datasource.Client {
	return datasource.NewClient(datasource.Options{
		BaseURL:    cfg.Backend.BaseURL,
		Timeout:    cfg.Backend.Timeout(),
		CatalogTTL: cfg.Dashboard.CatalogTTL(),
		APIToken:   cfg.Backend.APIToken,
		Logger:     logger,
	})
}

func newOrchestrator(backend *datasource.Client) *dashboard.Orchestrator {
	opts := dashboard.Options{
		Source:          backend,
		Timeout:         cfg.Backend.Timeout(),
		SuggestionLimit: cfg.Dashboard.SuggestionLimit,
		Logger:          logger,
	}
	if cfg.News.Enabled {
		opts.News = datasource.NewNews(datasource.NewsOptions{
			Feeds:      cfg.News.Feeds,
			CacheTTL:   cfg.News.CacheDuration(),
			RatePerSec: cfg.News.RatePerSec,
			Logger:     logger,
		})
		opts.NewsLimit = cfg.News.Limit
	}
	return dashboard.New(opts)
}

// commandContext is cancelled on SIGINT/SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("SmartB3 %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		fmt.Println("SmartB3 Status")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Market Status: %s\n", utils.MarketStatus())
		fmt.Printf("  Time (BRT):    %s\n", utils.FormatDateTimeBRT(utils.NowBRT()))
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Dashboard:     %s\n", cfg.API.Addr())
		fmt.Printf("    News feeds:    %s\n", newsStatus())
		fmt.Println()

		fmt.Println("  Backend:")
		for _, s := range config.CheckSettings(cfg) {
			status := "not set"
			if s.IsSet {
				status = fmt.Sprintf("set (%s: %s)", s.Source, s.Masked)
			}
			fmt.Printf("    %-20s %s\n", s.Name+":", status)
		}

		start := time.Now()
		companies, err := newBackend().Companies(ctx)
		if err != nil {
			fmt.Printf("    %-20s unreachable (%v)\n", "Reachability:", err)
			return nil
		}
		fmt.Printf("    %-20s ok, %d companies in %s\n", "Reachability:", len(companies), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func newsStatus() string {
	if !cfg.News.Enabled {
		return "disabled"
	}
	return fmt.Sprintf("%d feeds, %d headlines per company", len(cfg.News.Feeds), cfg.News.Limit)
}

// --- Catalog Commands ---

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List companies known to the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		orch := newOrchestrator(newBackend())
		defer orch.Close()
		if err := orch.LoadCatalog(ctx); err != nil && len(orch.Companies()) == 0 {
			return err
		}

		sector, _ := cmd.Flags().GetString("sector")
		if sector != "" {
			orch.SelectSector(sector)
		}
		v := viewmodel.Build(orch.Snapshot())
		items := v.Sidebar.Companies
		if sector == "" {
			items = viewmodel.CompanyItems(orch.Companies())
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(items)
		}
		for _, c := range items {
			fmt.Printf("%-7s %-32s %-20s %12s %8s\n", c.Ticker, c.Name, c.Sector, c.Price, c.Variation)
		}
		return nil
	},
}

var sectorsCmd = &cobra.Command{
	Use:   "sectors",
	Short: "List sectors known to the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		sectors, err := newBackend().Sectors(ctx)
		if err != nil {
			return err
		}
		for _, s := range sectors {
			fmt.Println(s)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Suggest companies whose ticker or name contains the text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		orch := newOrchestrator(newBackend())
		defer orch.Close()
		if err := orch.LoadCatalog(ctx); err != nil && len(orch.Companies()) == 0 {
			return err
		}

		suggestions := orch.SetSearchText(args[0])
		if len(suggestions) == 0 {
			fmt.Printf("No companies match %q\n", args[0])
			return nil
		}
		for _, c := range suggestions {
			fmt.Printf("%-7s %s\n", c.Ticker, c.Name)
		}
		return nil
	},
}

func init() {
	companiesCmd.Flags().String("sector", "", "only list companies in this sector")
	companiesCmd.Flags().Bool("json", false, "print JSON")
}

// --- Show Command ---

var showCmd = &cobra.Command{
	Use:   "show [ticker]",
	Short: "Load and print the dashboard for one company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		orch := newOrchestrator(newBackend())
		defer orch.Close()
		if err := orch.LoadCatalog(ctx); err != nil && len(orch.Companies()) == 0 {
			return err
		}

		ticker := utils.NormalizeTicker(args[0])
		if !utils.IsValidTicker(ticker) {
			return fmt.Errorf("%q is not a B3 ticker", args[0])
		}
		if _, err := orch.SelectTicker(ticker, false); err != nil {
			return err
		}

		done := make(chan struct{})
		go func() {
			orch.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}

		v := viewmodel.Build(orch.Snapshot())
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(v)
		}
		printView(v)
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("json", false, "print the view as JSON")
}

func printView(v viewmodel.View) {
	h := v.Header
	fmt.Printf("%s – %s (%s)\n", h.Ticker, h.Name, h.Sector)
	fmt.Printf("  Preço: %s  %s\n", h.Price, h.Variation)
	if h.UpdatedAt != "" {
		fmt.Printf("  Atualizado em %s\n", h.UpdatedAt)
	}

	fmt.Println("\nPrevisões")
	if panelOK(v.Chart.Panel) {
		if p := len(v.Chart.Points); p > 0 {
			last := v.Chart.Points[p-1]
			fmt.Printf("  %d pontos, último em %s\n", p, last.Date)
			for _, s := range v.Chart.Series {
				if val, ok := last.Value(s.Name); ok {
					fmt.Printf("  %-10s %s\n", s.Name, utils.FormatBRL(val))
				}
			}
		}
	}

	fmt.Println("\nComparação de modelos")
	if panelOK(v.Comparison.Panel) {
		for _, hz := range []viewmodel.Horizon{v.Comparison.ShortTerm, v.Comparison.LongTerm} {
			fmt.Printf("  %s\n", hz.Title)
			if hz.Real != "" {
				fmt.Printf("    %s\n", hz.Real)
			}
			for _, r := range hz.Rows {
				fmt.Printf("    %s\n", r.Text)
			}
		}
	}

	fmt.Println("\nEstatísticas")
	if panelOK(v.Statistics.Panel) {
		for _, b := range []viewmodel.MetricBlock{v.Statistics.Sector, v.Statistics.General} {
			fmt.Printf("  %s\n", b.Title)
			for _, m := range b.Metrics {
				fmt.Printf("    %-20s %s\n", m.Label, m.Value)
			}
		}
	}

	if v.News.Status != dashboard.StatusIdle {
		fmt.Println("\nNotícias")
		if panelOK(v.News.Panel) {
			for _, n := range v.News.Items {
				fmt.Printf("  • %s (%s, %s)\n", n.Title, n.Source, n.Published)
			}
		}
	}
}

func panelOK(p viewmodel.Panel) bool {
	if p.Status == dashboard.StatusFailed {
		fmt.Printf("  falha: %s\n", p.Error)
		return false
	}
	return p.Ready()
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.API.Port = port
		}
		noUI, _ := cmd.Flags().GetBool("no-ui")

		orch := newOrchestrator(newBackend())
		defer orch.Close()
		if err := orch.LoadCatalog(ctx); err != nil {
			logger.Warn("catalog not fully loaded; it will be retried on demand", "error", err)
		}

		srv := api.NewServer(api.Options{
			Config:       cfg,
			Orchestrator: orch,
			Logger:       logger,
			Version:      version,
			ServeUI:      !noUI,
		})
		fmt.Printf("Starting SmartB3 dashboard on http://%s\n", cfg.API.Addr())
		return srv.ListenAndServe(ctx, cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "port override")
	serveCmd.Flags().Bool("no-ui", false, "serve only the JSON API")
}
