package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/transformlab/engine"
	"github.com/katalvlaran/transformlab/store"
	"github.com/katalvlaran/transformlab/transform"
)

// parseFloats parses every argument as a float64.
func parseFloats(args []string) ([]float64, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %q is not a number", i+1, a)
		}
		out[i] = v
	}

	return out, nil
}

func (c *CLI) addCommand() *cobra.Command {
	var (
		factor float64
		name   string
		id     string
	)
	cmd := &cobra.Command{
		Use:   "add <kind> [params...]",
		Short: "Append a transform (defaults for omitted parameters)",
		Example: `  transformlab add scale 1 1 1
  transformlab add rotate 0 0 90 --factor 0.5 --name spin`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := transform.ParseKind(args[0])
			if err != nil {
				return err
			}
			params, err := parseFloats(args[1:])
			if err != nil {
				return err
			}
			opts := []engine.AddOption{engine.WithFactor(factor)}
			if params != nil {
				opts = append(opts, engine.WithParameters(params...))
			}
			if name != "" {
				opts = append(opts, engine.WithName(name))
			}
			if id != "" {
				opts = append(opts, engine.WithID(id))
			}

			return c.mutate(cmd, func(e *engine.Engine) (string, error) {
				got, err := e.AddTransform(kind, opts...)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("added %s %s", kind, got), nil
			})
		},
	}
	cmd.Flags().Float64VarP(&factor, "factor", "f", 1, "blend factor in [0, 1]")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name (defaults to the kind name)")
	cmd.Flags().StringVar(&id, "id", "", "explicit id (generated when empty)")

	return cmd
}

func (c *CLI) updateCommand() *cobra.Command {
	var factor float64
	cmd := &cobra.Command{
		Use:   "update <id> [params...]",
		Short: "Replace the parameters and/or the factor of a transform",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseFloats(args[1:])
			if err != nil {
				return err
			}
			patch := store.Patch{Parameters: params}
			if cmd.Flags().Changed("factor") {
				patch.Factor = &factor
			}
			if patch.Parameters == nil && patch.Factor == nil {
				return fmt.Errorf("nothing to update: pass parameters or --factor")
			}

			return c.mutate(cmd, func(e *engine.Engine) (string, error) {
				return "updated " + args[0], e.EditTransform(args[0], patch)
			})
		},
	}
	cmd.Flags().Float64VarP(&factor, "factor", "f", 1, "blend factor in [0, 1]")

	return cmd
}

func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a transform",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd, func(e *engine.Engine) (string, error) {
				return "removed " + args[0], e.RemoveTransform(args[0])
			})
		},
	}
}

func (c *CLI) moveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <index>",
		Short: "Move a transform to a zero-based position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index %q is not an integer", args[1])
			}

			return c.mutate(cmd, func(e *engine.Engine) (string, error) {
				return fmt.Sprintf("moved %s to %d", args[0], index), e.MoveTransform(args[0], index)
			})
		},
	}
}

func (c *CLI) renameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Set the display name of a transform",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd, func(e *engine.Engine) (string, error) {
				return fmt.Sprintf("renamed %s to %q", args[0], args[1]), e.RenameTransform(args[0], args[1])
			})
		},
	}
}

func (c *CLI) reorderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <id>...",
		Short: "Reorder transforms; the ids must list every transform exactly once",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd, func(e *engine.Engine) (string, error) {
				return "reordered", e.ReorderTransforms(args)
			})
		},
	}
}

func (c *CLI) globalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "global <factor>",
		Short: "Set the global factor that blends the whole composition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("factor %q is not a number", args[0])
			}

			return c.mutate(cmd, func(e *engine.Engine) (string, error) {
				return "global factor " + formatFloat(v), e.SetGlobalFactor(v)
			})
		},
	}
}

func (c *CLI) resetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Remove every transform and set the global factor back to 1",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.mutate(cmd, func(e *engine.Engine) (string, error) {
				e.ResetAll()
				return "reset", nil
			})
		},
	}
}
