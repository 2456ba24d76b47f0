// Package cmd defines the command-line interface for snowdash.
package cmd

import (
	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(trendsCmd)
	rootCmd.AddCommand(efficiencyCmd)
	rootCmd.AddCommand(anomaliesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(snapshotCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the snapshot subcommands to the parent snapshot command
	snapshotCmd.AddCommand(snapshotClearCmd)
	snapshotCmd.AddCommand(snapshotStatusCmd)
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("warehouse-backend", string(schema.SnowflakeWarehouse), "Warehouse dialect: snowflake or postgresql or mysql or sqlite")
	rootCmd.PersistentFlags().String("warehouse-dsn", "", "Warehouse connection string (prefer SNOWDASH_WAREHOUSE_DSN or a .env file)")
	rootCmd.PersistentFlags().Int("efficiency-lookback", contract.DefaultEfficiencyLookbackDays, "Efficiency lookback in days (1-30)")
	rootCmd.PersistentFlags().Int("anomaly-lookback", contract.DefaultAnomalyLookbackDays, "Anomaly lookback in days (7-90)")
	rootCmd.PersistentFlags().Float64("anomaly-threshold", contract.DefaultAnomalyThreshold, "Anomaly z-score threshold (1.5-3.5, step 0.1)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or json or csv or xlsx")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.MemoryBackend), "Query cache backend: memory or sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for the query cache (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("cache-ttl", contract.DefaultCacheTTL.String(), "How long cached query results stay fresh")
	rootCmd.PersistentFlags().String("snapshot-backend", "", "Snapshot history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("snapshot-db-connect", "", "Database connection string for snapshot history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().Float64("credit-price", contract.DefaultCreditPrice, "Dollar price of one credit, shown in the footer")
	rootCmd.PersistentFlags().String("otlp-endpoint", "", "OTLP gRPC endpoint for traces (host:port); tracing is off when empty")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emojis in headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen-addr", contract.DefaultListenAddr, "Address the HTTP dashboard listens on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of snapshotMigrateCmd to Viper
	snapshotMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(snapshotMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding snapshot migrate flags", err)
	}
}
