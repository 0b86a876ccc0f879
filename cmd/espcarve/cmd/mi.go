package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/espcarve/espcarve/pkg/export"
	"github.com/espcarve/espcarve/pkg/minvs"
)

// miCmd represents the mi command
var miCmd = &cobra.Command{
	Use:   "mi <partition-file>",
	Short: "Decode a Xiaomi/Yeelight flat key-value partition to CSV",
	Long: `Decode the undocumented flat key-value format Xiaomi/Yeelight
ESP32 devices store in their data partitions and write the entries to a
CSV file next to the input.

Example:
  espcarve mi lamp.data.unknown.minvs.dat`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading partition file: %w", err)
		}

		opts := scanOptions(cmd)
		res := minvs.Scan(image, minvs.Options{
			IncludeWritten: opts.IncludeWritten,
			IncludeErased:  opts.IncludeErased,
		})
		for _, w := range res.Warnings {
			logger.Warn("mi decode warning",
				zap.Int("offset", w.Offset),
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

		if err := export.WriteMi(out, res.Entries); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}

		logger.Info("mi partition decoded",
			zap.String("input", args[0]),
			zap.String("output", outPath),
			zap.Int("entries", len(res.Entries)),
			zap.Int("warnings", len(res.Warnings)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(miCmd)
	addRecordFlags(miCmd)
}
