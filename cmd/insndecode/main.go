// Command insndecode is the command-line driver: it parses a
// specification file, builds a decoder tree, checks reachability, and
// emits generated source, wiring internal/config, internal/langparse,
// internal/decoder/builder, internal/reachability, and internal/emitter.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "insndecode",
		Short: "Generate branch-friendly decoder trees from binary-pattern specifications",
	}
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newConfigCmd())
	return root
}
