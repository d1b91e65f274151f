package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/transformlab/engine"
	"github.com/katalvlaran/transformlab/matrix"
	"github.com/katalvlaran/transformlab/snapshot"
	"github.com/katalvlaran/transformlab/transform"
)

// layout selects how matrices are printed.
type layout bool

const (
	rowLayout    layout = false // p' = p·M, translation in the bottom row
	columnLayout layout = true  // p' = M·p, translation in the last column
)

func (l layout) of(m matrix.Mat4) matrix.Mat4 {
	if l == columnLayout {
		return matrix.Transpose(m)
	}

	return m
}

// printState prints the transform list, the combined matrix and its
// determinant. With matrices set, each transform's own matrix follows.
func printState(w io.Writer, e *engine.Engine, matrices bool, l layout) {
	st := e.Snapshot()
	d := e.Derived()

	t := newTable("#", "ID", "Name", "Kind", "Factor", "Parameters")
	for i, tr := range st.Transforms {
		t.Row(strconv.Itoa(i), tr.ID, tr.Name, tr.Kind.String(), formatFloat(tr.Factor), formatFloats(tr.Parameters))
	}
	printTitle(w, fmt.Sprintf("Transforms (v%d)", st.Version))
	if len(st.Transforms) == 0 {
		fmt.Fprintln(w, StyleDim.Render("  (none)"))
	} else {
		fmt.Fprintln(w, t.String())
	}

	if matrices {
		for i, id := range d.IDs {
			printTitle(w, fmt.Sprintf("%d. %s", i, id))
			printMatrix(w, l.of(d.Matrices[i]))
		}
	}

	printTitle(w, "Combined")
	printMatrix(w, l.of(d.Combined))
	printKeyValue(w, "global factor", formatFloat(st.GlobalFactor))
	printKeyValue(w, "determinant", StyleNumber.Render(formatFloat(d.Determinant)))
	printKeyValue(w, "identity", strconv.FormatBool(d.Combined.IsIdentity()))
}

func (c *CLI) showCommand() *cobra.Command {
	var (
		matrices bool
		asJSON   bool
		column   bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the transforms, the combined matrix and its determinant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(s.engine.Derived())
			}
			printState(out, s.engine, matrices, layout(column))

			return nil
		},
	}
	cmd.Flags().BoolVarP(&matrices, "matrices", "m", false, "also print each transform's matrix")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the derived state as JSON")
	cmd.Flags().BoolVar(&column, "column", false, "print matrices for column vectors (transposed)")

	return cmd
}

func (c *CLI) kindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List transform kinds with their parameters and ranges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := newTable("Kind", "Arity", "Parameters", "Defaults", "Range", "Description")
			for _, sp := range transform.Catalog() {
				labels := strings.Join(sp.Labels, ", ")
				if sp.Kind == transform.Custom {
					labels = "m00 .. m33"
				}
				t.Row(
					sp.Kind.String(),
					strconv.Itoa(sp.Arity),
					labels,
					formatFloats(sp.Defaults),
					fmt.Sprintf("%s..%s / %s", formatFloat(sp.Range.Min), formatFloat(sp.Range.Max), formatFloat(sp.Range.Step)),
					sp.Description,
				)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())

			return nil
		},
	}
}

// readRecord decodes a snapshot file, picking the codec by extension.
func readRecord(path string) (snapshot.Record, error) {
	codec, err := snapshot.CodecForPath(path)
	if err != nil {
		return snapshot.Record{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return snapshot.Record{}, err
	}
	defer f.Close()

	return snapshot.Decode(f, codec)
}

func (c *CLI) applyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <x> <y> <z> [<x> <y> <z>...]",
		Short: "Map points through the combined matrix",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%3 != 0 {
				return fmt.Errorf("want coordinates in groups of 3, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			vals, err := parseFloats(args)
			if err != nil {
				return err
			}
			if i := matrix.FirstNonFinite(vals); i >= 0 {
				return fmt.Errorf("coordinate %d: %w", i+1, transform.ErrNonFinite)
			}
			points := make([]matrix.Vec3, len(vals)/3)
			for i := range points {
				points[i] = matrix.Vec3{vals[3*i], vals[3*i+1], vals[3*i+2]}
			}

			s, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			d := s.engine.Derived()
			t := newTable("Point", "Mapped")
			for i, p := range d.Combined.ApplyAll(points) {
				t.Row(formatFloats(points[i][:]), formatFloats(p[:]))
			}
			out := cmd.OutOrStdout()
			printTitle(out, fmt.Sprintf("Points (v%d)", d.Version))
			fmt.Fprintln(out, t.String())

			return nil
		},
	}
}

func (c *CLI) composeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compose <file>",
		Short: "Compose a snapshot file (.json or .toml) without touching the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := readRecord(args[0])
			if err != nil {
				return err
			}
			col, err := rec.Collection()
			if err != nil {
				return err
			}
			res, err := transform.ComposeChecked(col)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("composed", "file", args[0], "transforms", len(col.Transforms), "combined", res.Combined)

			out := cmd.OutOrStdout()
			printTitle(out, fmt.Sprintf("Combined (%d transforms)", len(col.Transforms)))
			printMatrix(out, res.Combined)
			printKeyValue(out, "determinant", StyleNumber.Render(formatFloat(res.Determinant)))

			return nil
		},
	}
}

func (c *CLI) exportCommand() *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the collection as JSON or TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			codec, err := snapshot.ParseCodec(format)
			if err != nil {
				return err
			}
			if output != "" && !cmd.Flags().Changed("format") {
				if byExt, err := snapshot.CodecForPath(output); err == nil {
					codec = byExt
				}
			}
			s, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			data, err := snapshot.Marshal(codec, s.engine.Export())
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err = os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "exported %d transforms to %s", len(s.engine.Snapshot().Transforms), output)

			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "json or toml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout when empty)")

	return cmd
}

func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the collection with a snapshot file (.json or .toml)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := readRecord(args[0])
			if err != nil {
				return err
			}

			return c.mutate(cmd, func(e *engine.Engine) (string, error) {
				return fmt.Sprintf("imported %d transforms from %s", len(rec.Transforms), args[0]), e.Import(rec)
			})
		},
	}
}
