package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/espcarve/espcarve/pkg/appimage"
	"github.com/espcarve/espcarve/pkg/parttable"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <flash-dump>",
	Short: "Carve a full flash dump into partition files",
	Long: `Read the partition table from a full ESP32 flash dump and write
one file per partition: app partitions (and the bootloader) become ELF
files, data partitions become raw .dat files ready for the nvs and mi
commands.

Output files are named <base>.<type>.<subtype>.<label> with an .elf or
.dat extension.

Example:
  espcarve extract flash.bin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flash, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading flash dump: %w", err)
		}

		bootloaderOffset, err := offsetFlag(cmd, "bootloader")
		if err != nil {
			return err
		}
		tableOffset, err := offsetFlag(cmd, "table")
		if err != nil {
			return err
		}

		base := filepath.Join(cfg.OutputDir, strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0])))

		// The bootloader is not a partition table entry; carve it first.
		if int(bootloaderOffset) < len(flash) {
			if err := writeELF(flash[bootloaderOffset:], base+".bootloader.elf"); err != nil {
				logger.Warn("skipping bootloader", zap.Error(err))
			}
		}

		table, err := parttable.Read(flash, int(tableOffset))
		if err != nil {
			return fmt.Errorf("reading partition table: %w", err)
		}
		for _, w := range table.Warnings {
			logger.Warn("partition table warning", zap.String("msg", w))
		}

		// Partitions are independent byte ranges; carve them concurrently.
		var g errgroup.Group
		for _, part := range table.Partitions {
			part := part
			g.Go(func() error {
				return extractPartition(flash, part, base)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		logger.Info("flash dump extracted",
			zap.String("input", args[0]),
			zap.Int("partitions", len(table.Partitions)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().String("bootloader", "0x1000", "Flash offset of the bootloader image")
	extractCmd.Flags().String("table", "0x8000", "Flash offset of the partition table")
}

// offsetFlag parses a flag that accepts decimal or 0x-prefixed hex.
func offsetFlag(cmd *cobra.Command, name string) (uint32, error) {
	raw, _ := cmd.Flags().GetString(name)
	v, err := strconv.ParseUint(raw, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s offset %q: %w", name, raw, err)
	}
	return uint32(v), nil
}

func extractPartition(flash []byte, part parttable.Partition, base string) error {
	data, err := part.Slice(flash)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("%s.%s.%s.%s", base, part.Type, part.SubTypeName(), part.Label)
	if part.Type == parttable.TypeApp {
		if err := writeELF(data, name+".elf"); err != nil {
			return fmt.Errorf("partition %q: %w", part.Label, err)
		}
	} else {
		if err := os.WriteFile(name+".dat", data, 0600); err != nil {
			return fmt.Errorf("partition %q: %w", part.Label, err)
		}
	}

	logger.Info("partition extracted",
		zap.String("label", part.Label),
		zap.String("type", part.Type.String()),
		zap.String("subtype", part.SubTypeName()),
		zap.Uint32("addr", part.Addr),
		zap.Uint32("size", part.Size))
	return nil
}

// writeELF parses an app image and writes it as an ELF file.
func writeELF(data []byte, path string) error {
	img, err := appimage.Parse(data)
	if err != nil {
		return err
	}
	for _, w := range img.Warnings {
		logger.Warn("app image warning", zap.String("file", path), zap.String("msg", w))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return img.WriteELF(f)
}
