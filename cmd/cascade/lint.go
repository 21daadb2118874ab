package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cascade-ui/cascade"
)

func lintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <file.yaml>",
		Short: "Compile a configuration and report every diagnostic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			rt, err := buildRuntime(doc)
			if err != nil {
				return err
			}

			_, diags, err := rt.CompileObject(cascade.Config(doc.Root))
			if err != nil {
				return fmt.Errorf("root node failed: %w", err)
			}
			if !diags.Empty() {
				for _, e := range diags.Errors() {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %v\n", e)
				}
				return fmt.Errorf("%d diagnostic(s)", diags.Len())
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s\n", args[0])
			return nil
		},
	}
}
