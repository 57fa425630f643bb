// Command rxc is the command-line front end for the compiler: it reads
// a JSON P-IR fixture (§6 "Inputs to the core", standing in for a real
// lexer/parser, which is out of scope here), runs it through the
// collect → import-verify → check → lower pipeline, and reports either
// the lowered T-IR or the first diagnostic raised.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rxlang/rxc/internal/depmgr"
	"github.com/rxlang/rxc/internal/diag"
	"github.com/rxlang/rxc/internal/phase"
	"github.com/rxlang/rxc/internal/pipeline"
	"github.com/rxlang/rxc/internal/pir"
)

// Version is set by ldflags during release builds.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "rxc",
		Short:   "rxc compiles and checks reactive-phase source fixtures",
		Version: Version,
	}

	var manifestPath string
	root.PersistentFlags().StringVar(&manifestPath, "manifest", "rxc.yaml", "project manifest path")

	root.AddCommand(newCompileCmd(&manifestPath))
	root.AddCommand(newCheckCmd(&manifestPath))
	root.AddCommand(newExplainPhaseCmd())
	root.AddCommand(newReplCmd(&manifestPath))
	return root
}

func loadPipelineConfig(manifestPath string, skipLowering bool) (pipeline.Config, error) {
	m, err := depmgr.LoadManifest(manifestPath)
	if err != nil {
		return pipeline.Config{}, err
	}
	self, err := m.Self()
	if err != nil {
		return pipeline.Config{}, err
	}
	resolver, err := depmgr.NewManifestResolver(m)
	if err != nil {
		return pipeline.Config{}, err
	}
	return pipeline.Config{Self: self, Resolver: resolver, SkipLowering: skipLowering}, nil
}

func loadSources(paths []string) ([]pipeline.Source, error) {
	sources := make([]pipeline.Source, len(paths))
	for i, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		f, err := pir.DecodeFile(data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", p, err)
		}
		sources[i] = pipeline.Source{Path: p, File: f}
	}
	return sources, nil
}

func reportErr(err error) {
	if d, ok := diag.As(err); ok {
		diag.NewRenderer(os.Stderr).Render(d)
		return
	}
	fmt.Fprintln(os.Stderr, color.RedString("error: %s", err))
}

func newCompileCmd(manifestPath *string) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "compile <fixture.json>...",
		Short: "check and lower one or more P-IR fixtures to T-IR",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadPipelineConfig(*manifestPath, false)
			if err != nil {
				return err
			}
			sources, err := loadSources(args)
			if err != nil {
				return err
			}
			result, err := pipeline.Run(context.Background(), cfg, sources)
			if err != nil {
				reportErr(err)
				return err
			}
			for path, art := range result.Artifacts {
				out, err := json.MarshalIndent(art.Lowered, "", "  ")
				if err != nil {
					return err
				}
				if outPath == "" {
					fmt.Printf("// %s\n%s\n", path, out)
					continue
				}
				if err := os.WriteFile(outPath, out, 0o644); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the lowered T-IR here instead of stdout")
	return cmd
}

func newCheckCmd(manifestPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check <fixture.json>...",
		Short: "type- and phase-check fixtures without lowering",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadPipelineConfig(*manifestPath, true)
			if err != nil {
				return err
			}
			sources, err := loadSources(args)
			if err != nil {
				return err
			}
			if _, err := pipeline.Run(context.Background(), cfg, sources); err != nil {
				reportErr(err)
				return err
			}
			fmt.Println(color.GreenString("ok"))
			return nil
		},
	}
}

func newExplainPhaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain-phase <param-phase> <arg-phase>",
		Short: "print what phase an argument contributes to a call, per the combination table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var expected *phase.Expression
			if args[0] != "_" {
				p, err := phase.ParseExpression(args[0])
				if err != nil {
					return err
				}
				expected = &p
			}
			actual, err := phase.ParseExpression(args[1])
			if err != nil {
				return err
			}
			result, ok := phase.AdjustResult(expected, actual)
			if !ok {
				fmt.Println(color.RedString("fail: this combination is not permitted"))
				return nil
			}
			fmt.Printf("%s\n", result)
			return nil
		},
	}
}

func newReplCmd(manifestPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "interactively explore phase combinations and check fixture snippets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(*manifestPath)
		},
	}
}
