package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gowebpki/jcs"
	"github.com/localnerve/transform-studio/internal/notation"
	"github.com/localnerve/transform-studio/internal/ordered"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdin).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader) *cobra.Command {
	root := &cobra.Command{
		Use:           "transformctl",
		Short:         "Inspect identity platform transform JSON from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRenderCmd(stdin), newTypesCmd(stdin), newCanonicalCmd(stdin))
	return root
}

func newRenderCmd(stdin io.Reader) *cobra.Command {
	var asJSON bool
	var level int

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render a transform as annotated notation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if level < 0 {
				return fmt.Errorf("level must not be negative: %d", level)
			}
			v, err := readTransform(stdin, args)
			if err != nil {
				return err
			}

			rec := notation.Render(v, level)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			}
			_, err = fmt.Fprintln(out, rec.ParsedNotation)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full notation record as JSON")
	cmd.Flags().IntVarP(&level, "level", "l", 0, "Starting nesting level")
	return cmd
}

func newTypesCmd(stdin io.Reader) *cobra.Command {
	return &cobra.Command{
		Use:   "types [file|-]",
		Short: "List every transform type referenced in a tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := readTransform(stdin, args)
			if err != nil {
				return err
			}
			types := notation.ReferencedTypes(v)
			if len(types) == 0 {
				return nil
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(types, "\n"))
			return err
		},
	}
}

func newCanonicalCmd(stdin io.Reader) *cobra.Command {
	return &cobra.Command{
		Use:   "canonical [file|-]",
		Short: "Print the RFC 8785 canonical form of a transform",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(stdin, args)
			if err != nil {
				return err
			}
			canonical, err := jcs.Transform(data)
			if err != nil {
				return fmt.Errorf("canonicalize: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(canonical))
			return err
		},
	}
}

// readInput reads the named file, or stdin for "-" or no argument.
func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", args[0], err)
	}
	return data, nil
}

func readTransform(stdin io.Reader, args []string) (any, error) {
	data, err := readInput(stdin, args)
	if err != nil {
		return nil, err
	}
	v, err := ordered.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode transform: %w", err)
	}
	return v, nil
}
