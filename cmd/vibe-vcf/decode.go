package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-vcf/internal/output"
	"github.com/inodb/vibe-vcf/internal/vcf"
)

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <input-file>",
		Short: "Decode a VCF file to JSON or tab output",
		Long: `Decode reads a VCF file and writes one structured record per data line.
Plain and gzipped files are supported; use '-' to read from stdin.`,
		Example: `  vibe-vcf decode input.vcf
  vibe-vcf decode --format tab -o records.tsv input.vcf.gz
  cat input.vcf | vibe-vcf decode --pretty -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, args[0])
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringP("format", "f", "json", "Output format: json, tab")
	cmd.Flags().Bool("pretty", false, "Indent JSON output")
	cmd.Flags().Bool("permissive", false, "Log and skip undecodable lines instead of stopping")
	cmd.Flags().Bool("include-raw", false, "Carry the raw line text on each record")
	cmd.Flags().Bool("no-annotations", false, "Skip VEP (CSQ) and snpEff (EFF) decoding")

	return cmd
}

func runDecode(cmd *cobra.Command, path string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	it, err := vcf.NewIterator(path)
	if err != nil {
		return err
	}
	defer it.Close()

	it.SetPermissive(boolSetting(cmd, "permissive", "decode.permissive"))
	it.SetIncludeRaw(boolSetting(cmd, "include-raw", "decode.include-raw"))
	it.SetLogger(logger)

	if noAnn, _ := cmd.Flags().GetBool("no-annotations"); !noAnn {
		registerAnnotationProcessors(it, logger)
	}

	var out io.Writer = os.Stdout
	if outPath, _ := cmd.Flags().GetString("output"); outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	var writer output.RecordWriter
	switch format := stringSetting(cmd, "format", "output.format"); format {
	case "json":
		jw := output.NewJSONWriter(out)
		jw.SetPretty(boolSetting(cmd, "pretty", "output.pretty"))
		writer = jw
	case "tab":
		writer = output.NewTabWriter(out)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	if err := writer.WriteHeader(); err != nil {
		return err
	}
	for {
		rec, err := it.Next()
		if err != nil {
			return err
		}
		if rec == nil {
			break
		}
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// registerAnnotationProcessors wires the VEP and snpEff INFO decoders when
// the header declares their keys. A declared key whose description cannot
// be decoded is reported and left to the fallback processor.
func registerAnnotationProcessors(it *vcf.Iterator, logger *zap.Logger) {
	if p, err := vcf.NewVEPProcessor(it.Header()); err == nil {
		it.AddProcessor(p)
	} else if it.Header().InfoField("CSQ") != nil {
		logger.Warn("cannot decode CSQ annotations", zap.Error(err))
	}

	if p, err := vcf.NewSnpEffProcessor(it.Header()); err == nil {
		it.AddProcessor(p)
	} else if it.Header().InfoField("EFF") != nil {
		logger.Warn("cannot decode EFF annotations", zap.Error(err))
	}
}
