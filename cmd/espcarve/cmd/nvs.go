package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/espcarve/espcarve/pkg/export"
	"github.com/espcarve/espcarve/pkg/nvs"
)

// nvsCmd represents the nvs command
var nvsCmd = &cobra.Command{
	Use:   "nvs <partition-file>",
	Short: "Decode an NVS partition dump to CSV",
	Long: `Decode an ESP32 NVS data partition (see the extract command for
carving one out of a full flash dump) and write its key-value entries to a
CSV file next to the input.

Example:
  espcarve nvs dump.data.nvs.nvs.dat`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading partition file: %w", err)
		}

		res := nvs.Scan(image, scanOptions(cmd))
		for _, w := range res.Warnings {
			logger.Warn("nvs decode warning",
				zap.String("kind", w.Kind.String()),
				zap.Int("page", w.Page),
				zap.Int("slot", w.Slot),
				zap.String("msg", w.Msg))
		}

		outPath, _ := cmd.Flags().GetString("output")
		if outPath == "" {
			outPath = csvPath(args[0])
		}
		out, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer out.Close()

		if err := export.WriteNVS(out, res.Records); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}

		logger.Info("nvs partition decoded",
			zap.String("input", args[0]),
			zap.String("output", outPath),
			zap.Int("records", len(res.Records)),
			zap.Int("warnings", len(res.Warnings)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nvsCmd)
	addRecordFlags(nvsCmd)
}

// addRecordFlags registers the record state filter flags shared by the
// decode commands.
func addRecordFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("written", "w", true, "Extract written entries")
	cmd.Flags().BoolP("erased", "e", false, "Extract erased entries")
	cmd.Flags().StringP("output", "o", "", "Output CSV path (default: input with .csv extension)")
}

// scanOptions resolves the record filters: config file defaults, overridden
// by explicitly set flags.
func scanOptions(cmd *cobra.Command) nvs.Options {
	opts := nvs.Options{
		IncludeWritten: cfg.Records.IncludeWritten,
		IncludeErased:  cfg.Records.IncludeErased,
	}
	if cmd.Flags().Changed("written") {
		opts.IncludeWritten, _ = cmd.Flags().GetBool("written")
	}
	if cmd.Flags().Changed("erased") {
		opts.IncludeErased, _ = cmd.Flags().GetBool("erased")
	}
	return opts
}

// csvPath swaps the input's extension for .csv, placing the file in the
// configured output directory.
func csvPath(input string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ".csv"
	return filepath.Join(cfg.OutputDir, base)
}
