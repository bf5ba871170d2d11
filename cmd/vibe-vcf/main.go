// Package main provides the vibe-vcf command-line tool.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vibe-vcf",
		Short: "Decode, load and query VCF files",
		Long: `vibe-vcf decodes VCF files into structured records: the header metadata
drives the typing of INFO and sample values, and VEP (CSQ) and snpEff (EFF)
annotations are unpacked per alternate allele.`,
		Example: `  # Decode a VCF file to JSON, one record per line
  vibe-vcf decode input.vcf

  # Load several files into a DuckDB database
  vibe-vcf load --database records.db a.vcf b.vcf.gz

  # Query the database
  vibe-vcf query count --database records.db`,
		Version:      fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage: true,
	}

	root.PersistentFlags().Bool("verbose", false, "Enable verbose logging")

	cobra.OnInitialize(initConfig)

	root.AddCommand(newDecodeCmd())
	root.AddCommand(newLoadCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newConfigCmd())

	return root
}

// initConfig loads ~/.vibe-vcf.yaml and the VIBE_VCF_* environment.
func initConfig() {
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".vibe-vcf")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("VIBE_VCF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine; flags and defaults apply.
	_ = viper.ReadInConfig()
}

// boolSetting resolves a boolean flag against its config key. An explicit
// flag wins over the config file.
func boolSetting(cmd *cobra.Command, flag, key string) bool {
	v, _ := cmd.Flags().GetBool(flag)
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return v
}

// intSetting resolves an integer flag against its config key.
func intSetting(cmd *cobra.Command, flag, key string) int {
	v, _ := cmd.Flags().GetInt(flag)
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return v
}

// stringSetting resolves a string flag against its config key.
func stringSetting(cmd *cobra.Command, flag, key string) string {
	v, _ := cmd.Flags().GetString(flag)
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetString(key)
	}
	return v
}

// newLogger builds the command logger. The default level is Warn so that
// permissive-mode skip diagnostics surface without drowning normal output.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !boolSetting(cmd, "verbose", "log.verbose") {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}

// databasePath resolves the record database location: flag, then config,
// then ~/.vibe-vcf/records.db.
func databasePath(cmd *cobra.Command) string {
	if path := stringSetting(cmd, "database", "database.path"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "records.db"
	}
	return filepath.Join(home, ".vibe-vcf", "records.db")
}
