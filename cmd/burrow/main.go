package main

import (
	"fmt"
	"os"

	"github.com/cuemby/burrow/pkg/config"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/replica"
	"github.com/cuemby/burrow/pkg/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "burrow",
	Short: "Burrow - an embeddable, peer-to-peer syncing JSON document database",
	Long: `Burrow stores JSON documents in a local, embeddable database and
synchronizes them with peer replicas using vector clocks, with no
central server required.`,
	Version: Version,
}

var cfg config.Config

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"burrow version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("config", "", "Path to a burrow.yaml config file")
	rootCmd.PersistentFlags().String("data-dir", "", "Data directory for the replica's bbolt file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(loadConfig)

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(conflictsCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() {
	configPath, _ := rootCmd.PersistentFlags().GetString("config")

	v := viper.New()
	loaded, err := config.Load(configPath, v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg = loaded

	if dataDir, _ := rootCmd.PersistentFlags().GetString("data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel, _ := rootCmd.PersistentFlags().GetString("log-level"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json"); logJSON {
		cfg.LogJSON = true
	}

	log.Init(log.Config{
		Level:      log.Level(cfg.LogLevel),
		JSONOutput: cfg.LogJSON,
	})
}

// openReplica opens the bbolt-backed replica at cfg.DataDir, creating
// it on first use.
func openReplica() (*replica.Replica, error) {
	st, err := store.Open(cfg.DataDir, "burrow")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	r, err := replica.Open(replica.Config{Store: st})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("open replica: %w", err)
	}
	return r, nil
}
