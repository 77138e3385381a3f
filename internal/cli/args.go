package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/cxn/pkg/cxn"
)

// RequireProbeTarget validates that exactly one kind or target name is provided.
// Returns a helpful error message with usage and examples if missing.
func RequireProbeTarget(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`%w: missing required argument: <kind|target>

Usage: %s

Example:
  %s postgres -u postgres://localhost:5432/postgres

Use 'cxn kinds' to see available kinds.`, cxn.ErrUsage, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}
