package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-vcf/internal/duckdb"
	"github.com/inodb/vibe-vcf/internal/vcf"
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query a record database",
		Example: `  vibe-vcf query count
  vibe-vcf query position 20 14370
  vibe-vcf query filters --database records.db`,
	}

	cmd.PersistentFlags().StringP("database", "d", "", "Database file (default: ~/.vibe-vcf/records.db)")

	cmd.AddCommand(newQueryCountCmd())
	cmd.AddCommand(newQueryPositionCmd())
	cmd.AddCommand(newQueryFiltersCmd())

	return cmd
}

func newQueryCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.CountRecords()
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		},
	}
}

func newQueryPositionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "position <chrom> <pos>",
		Short: "Print the records at a chromosome position as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("parse position %q: %w", args[1], err)
			}

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.LookupPosition(args[0], pos)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			for _, r := range records {
				doc := struct {
					Source string      `json:"source"`
					Line   int         `json:"line"`
					Record *vcf.Record `json:"record"`
				}{r.Source, r.Line, r.Record}
				if err := enc.Encode(doc); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newQueryFiltersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "Print the distinct FILTER values with their record counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			filters, err := store.Filters()
			if err != nil {
				return err
			}

			names := make([]string, 0, len(filters))
			for name := range filters {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				fmt.Printf("%s\t%d\n", name, filters[name])
			}
			return nil
		},
	}
}

func openStore(cmd *cobra.Command) (*duckdb.Store, error) {
	path := databasePath(cmd)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no record database at %s; run 'vibe-vcf load' first", path)
	}
	return duckdb.Open(path)
}
