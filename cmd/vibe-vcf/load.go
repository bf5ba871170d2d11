package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-vcf/internal/duckdb"
	"github.com/inodb/vibe-vcf/internal/load"
	"github.com/inodb/vibe-vcf/internal/vcf"
)

func newLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <input-file> [<input-file>...]",
		Short: "Decode VCF files into a DuckDB database",
		Long: `Load decodes one or more VCF files concurrently and appends the records
to a DuckDB database. Reloading a file appends its records again.`,
		Example: `  vibe-vcf load a.vcf
  vibe-vcf load --database records.db --concurrency 4 a.vcf b.vcf.gz`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, args)
		},
	}

	cmd.Flags().StringP("database", "d", "", "Database file (default: ~/.vibe-vcf/records.db)")
	cmd.Flags().Int("concurrency", 0, "Files decoded in parallel (default: one per CPU)")
	cmd.Flags().Int("batch-size", 1000, "Records written to the database at a time")
	cmd.Flags().Bool("permissive", false, "Log and skip undecodable lines instead of stopping")
	cmd.Flags().Bool("no-annotations", false, "Skip VEP (CSQ) and snpEff (EFF) decoding")

	return cmd
}

func runLoad(cmd *cobra.Command, paths []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	dbPath := databasePath(cmd)
	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	loader := load.New(store)
	loader.SetLogger(logger)
	loader.SetConcurrency(intSetting(cmd, "concurrency", "load.concurrency"))
	loader.SetBatchSize(intSetting(cmd, "batch-size", "load.batch-size"))
	loader.SetPermissive(boolSetting(cmd, "permissive", "decode.permissive"))

	if noAnn, _ := cmd.Flags().GetBool("no-annotations"); !noAnn {
		loader.SetConfigure(func(it *vcf.Iterator) {
			registerAnnotationProcessors(it, logger)
		})
	}

	written, err := loader.Run(cmd.Context(), paths)
	if err != nil {
		return err
	}

	fmt.Printf("Loaded %d records from %d files into %s\n", written, len(paths), dbPath)
	return nil
}
