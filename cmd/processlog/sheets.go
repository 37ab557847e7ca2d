package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/core"
	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/loader"
)

func newSheetsCmd(g *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "sheets FILE",
		Short: "List the sheets of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormatFlag(format)
			if err != nil {
				return withCode(exitUsage, err)
			}

			data, err := readInput(args[0], g.maxSize)
			if err != nil {
				return err
			}

			svc := core.NewService(core.ServiceConfig{MaxFileSize: g.maxSize})
			sheets, err := svc.ListSheets(cmd.Context(), data, filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			for _, s := range sheets {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Input format (csv, xlsx, xls, xlsb); default from the extension")
	return cmd
}

// readInput loads a file, enforcing the size limit before reading it.
func readInput(path string, maxSize int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil {
		if err := loader.CheckSize(info.Size(), maxSize); err != nil {
			return nil, err
		}
	}
	return loader.ReadAll(f, maxSize)
}

func parseFormatFlag(s string) (loader.Format, error) {
	if s == "" {
		return "", nil
	}
	return loader.ParseFormat(s)
}
