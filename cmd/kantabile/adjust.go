package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"karolbroda.com/kantabile/internal/lrc"
)

var adjustCmd = &cobra.Command{
	Use:   "adjust <lyrics-file> <offset-seconds> [output-file]",
	Short: "shift every timestamp in an .lrc file",
	Long: `rewrites an .lrc file with every timestamp shifted by the given offset.
a negative offset makes lyrics appear earlier. timestamps that would go
negative clamp to zero. the default output file gets an _adjusted suffix.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputPath := args[0]

		offset, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid offset %q: %w", args[1], err)
		}

		outputPath := ""
		if len(args) == 3 {
			outputPath = args[2]
		} else {
			ext := filepath.Ext(inputPath)
			outputPath = strings.TrimSuffix(inputPath, ext) + "_adjusted" + ext
		}

		raw, err := os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("failed to read lyrics file: %w", err)
		}

		shifted, changed := lrc.ShiftLRC(string(raw), offset)
		if changed == 0 {
			return fmt.Errorf("no timestamped lines found in %s", inputPath)
		}

		err = os.WriteFile(outputPath, []byte(shifted), 0644)
		if err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}

		fmt.Printf("shifted %d lines by %+.2fs\n", changed, offset)
		fmt.Printf("wrote %s\n\n", outputPath)

		// short preview of the new timing
		preview := lrc.Parse(shifted)
		for i, line := range preview.Lines() {
			if i >= 5 {
				fmt.Println("  ...")
				break
			}
			fmt.Printf("  %s\n", line.String())
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(adjustCmd)
}
