package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/core"
)

type runOptions struct {
	layer    string
	sheet    string
	format   string
	long     bool
	variants bool
	naming   string
	outDir   string
	summary  bool
}

func newRunCmd(g *globalOptions) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Run the pipeline and write the CSV artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request(args[0])
			if err != nil {
				return withCode(exitUsage, err)
			}

			data, err := readInput(args[0], g.maxSize)
			if err != nil {
				return err
			}

			svc := core.NewService(core.ServiceConfig{MaxFileSize: g.maxSize, MaxConcurrent: 1})
			res, err := svc.Process(cmd.Context(), data, req)
			if err != nil {
				return err
			}

			for _, w := range res.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning %s: %s\n", w.Code, w.Message)
			}

			paths, err := writeArtifacts(opts.outDir, res.Artifacts)
			if err != nil {
				return err
			}

			if opts.summary {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(core.Summarize(res, 0))
			}
			return printResult(cmd, res, paths)
		},
	}

	cmd.Flags().StringVar(&opts.layer, "layer", "", "Layer: SPF, Closed or Reopen (required)")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "Sheet name for workbook inputs")
	cmd.Flags().StringVar(&opts.format, "format", "", "Input format (csv, xlsx, xls, xlsb); default from the extension")
	cmd.Flags().BoolVar(&opts.long, "long", false, "Write the long event log")
	cmd.Flags().BoolVar(&opts.variants, "variants", false, "Append the variant column to the case log")
	cmd.Flags().StringVar(&opts.naming, "naming", "layer", "Artifact naming: layer or final")
	cmd.Flags().StringVar(&opts.outDir, "out", ".", "Output directory")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "Print a JSON run summary instead of the artifact table")

	_ = cmd.MarkFlagRequired("layer")

	return cmd
}

func (o runOptions) request(path string) (core.Request, error) {
	layer, err := core.ParseLayer(o.layer)
	if err != nil {
		return core.Request{}, err
	}
	naming, ok := core.ParseNaming(o.naming)
	if !ok {
		return core.Request{}, fmt.Errorf("invalid --naming %q: want layer or final", o.naming)
	}
	format, err := parseFormatFlag(o.format)
	if err != nil {
		return core.Request{}, err
	}

	return core.Request{
		FileName: filepath.Base(path),
		Format:   format,
		Sheet:    o.sheet,
		Layer:    layer,
		Options: core.Options{
			LongFormat: o.long,
			Variants:   o.variants,
			Naming:     naming,
		},
	}, nil
}

// writeArtifacts renders every artifact before touching the output
// directory, then writes each through a temp file and rename so a failed
// run never leaves a partial CSV behind.
func writeArtifacts(dir string, artifacts []core.Artifact) ([]string, error) {
	bodies := make([][]byte, len(artifacts))
	for i, a := range artifacts {
		data, err := a.CSV()
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", a.Name, err)
		}
		bodies[i] = data
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	paths := make([]string, len(artifacts))
	for i, a := range artifacts {
		path := filepath.Join(dir, a.Name)
		if err := writeFileAtomic(path, bodies[i]); err != nil {
			return nil, err
		}
		paths[i] = path
	}
	return paths, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

func printResult(cmd *cobra.Command, res *core.Result, paths []string) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "run\t%s\n", res.RunID)
	fmt.Fprintf(tw, "layer\t%s\n", res.Layer)
	fmt.Fprintf(tw, "raw rows\t%d\n", res.Stats.RawRows)
	fmt.Fprintf(tw, "duplicates removed\t%d\n", res.Stats.DuplicatesRemoved)
	fmt.Fprintf(tw, "cases\t%d\n", res.Stats.Cases)
	fmt.Fprintf(tw, "dropped timestamps\t%d\n", res.Stats.DroppedTimestamps)
	for i, a := range res.Artifacts {
		fmt.Fprintf(tw, "%s\t%d rows\t%s\n", a.Kind, a.Table.Len(), paths[i])
	}
	return tw.Flush()
}
