package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cascade-ui/cascade"
	"github.com/cascade-ui/cascade/pkg/compile"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.yaml>",
		Short: "Print the resolved property set of every node",
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

			obj, diags, err := rt.CompileObject(cascade.Config(doc.Root))
			if err != nil {
				return fmt.Errorf("root node failed: %w", err)
			}

			printNode(cmd, obj, 0)
			for _, e := range diags.Errors() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", e)
			}
			return nil
		},
	}
}

func printNode(cmd *cobra.Command, obj *compile.Object, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s%s (%s)\n", indent, obj.Node(), obj.Class())

	resolved := obj.Resolved()
	keys := make([]string, 0, len(resolved))
	for k := range resolved {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == "class" || k == "spawn" {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s: %v\n", indent, k, resolved[k])
	}

	children := obj.Children()
	names := make([]string, 0, len(children))
	for name := range children {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		printNode(cmd, children[name], depth+1)
	}
}
