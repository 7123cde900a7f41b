package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/joho/godotenv"

	"github.com/alphaflow-trading/meanrev-bot/internal/config"
	"github.com/alphaflow-trading/meanrev-bot/internal/engine"
	"github.com/alphaflow-trading/meanrev-bot/internal/monitoring"
)

func main() {
	var (
		configFile = flag.String("config", "", "Configuration file (e.g., btc_eth_live.json)")
		envFile    = flag.String("env", ".env", "Environment file path (default: .env)")
	)
	flag.Parse()

	if *configFile == "" {
		log.Fatal("Please specify a config file with -config flag")
	}

	// Load environment variables from .env file
	if err := loadEnvFile(*envFile); err != nil {
		log.Printf("Warning: Could not load .env file (%v), checking environment variables...", err)
	}

	fmt.Println("🚀 Mean Reversion Bot Starting...")

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	manager, err := engine.NewManager(cfg)
	if err != nil {
		log.Fatalf("Failed to create engine manager: %v", err)
	}

	printStartupInfo(cfg, manager.Environment())

	setupMonitoringServers(cfg, manager.HealthChecker())

	ctx := context.Background()
	if err := manager.Start(ctx); err != nil {
		log.Fatalf("Failed to start engines: %v", err)
	}
	fmt.Println("🔄 Bot is running... (trading activity logged to file)")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	fmt.Println("\n🛑 Shutdown signal received...")

	manager.Stop()
	fmt.Println("✅ Bot stopped successfully")
}

// loadEnvFile loads environment variables from a file
func loadEnvFile(envFile string) error {
	if _, err := os.Stat(envFile); err == nil {
		return godotenv.Load(envFile)
	}
	return fmt.Errorf("env file %s not found", envFile)
}

// printStartupInfo prints the configured symbols and risk limits
func printStartupInfo(cfg *config.Config, environment string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("BOT INITIALIZATION")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"📊 Symbols", strings.Join(cfg.Symbols, ", ")},
		{"⏰ Cycle Interval", cfg.Trading.Interval().String()},
		{"🏪 Exchange", "Bybit (linear)"},
		{"🔧 Environment", environment},
	})

	t.AppendSeparator()

	t.AppendRows([]table.Row{
		{"💰 Risk Per Trade", fmt.Sprintf("%.2f%%", cfg.Trading.RiskPerTrade*100)},
		{"⚖️ Leverage", fmt.Sprintf("%.1fx", cfg.Trading.Leverage)},
		{"📉 Max Daily Drawdown", fmt.Sprintf("%.2f%%", cfg.Risk.MaxDailyDrawdown)},
		{"🔒 Profit Lock", fmt.Sprintf("%.2f%%", cfg.Risk.ProfitLock)},
		{"🔢 Max Trades / Day", cfg.Risk.MaxTrades},
		{"🏦 Daily Risk Pool", fmt.Sprintf("$%.2f", cfg.Risk.MaxTotalRisk)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 22, WidthMax: 22, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, WidthMax: 40, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}

// setupMonitoringServers starts the metrics and health HTTP endpoints
func setupMonitoringServers(cfg *config.Config, health *monitoring.HealthChecker) {
	healthMux := http.NewServeMux()
	healthMux.Handle("/health", health)

	go func() {
		log.Printf("Starting health server on %s", cfg.Monitoring.HealthAddr)
		if err := http.ListenAndServe(cfg.Monitoring.HealthAddr, healthMux); err != nil {
			log.Printf("Health server error: %v", err)
		}
	}()

	go func() {
		log.Printf("Starting metrics server on %s", cfg.Monitoring.MetricsAddr)
		if err := http.ListenAndServe(cfg.Monitoring.MetricsAddr, monitoring.NewMetricsHandler()); err != nil {
			log.Printf("Metrics server error: %v", err)
		}
	}()
}
