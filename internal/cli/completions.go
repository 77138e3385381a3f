package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/cxn/internal/config"
	"github.com/vvka-141/cxn/internal/logging"
)

var logFormats = []string{logging.FormatText, logging.FormatJSON}

// completeProbeTargets completes kind names and the targets of ./cxn.yaml.
func completeProbeTargets(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var matches []string
	for _, k := range kindRegistry.Kinds() {
		if strings.HasPrefix(k.Name, toComplete) {
			matches = append(matches, k.Name+"\t"+k.Description)
		}
	}

	if cfg, err := config.Load("."); err == nil {
		for _, name := range cfg.TargetNames() {
			if strings.HasPrefix(name, toComplete) {
				matches = append(matches, name+"\t"+cfg.Targets[name].Kind+" target from "+config.ConfigFileName)
			}
		}
	}

	return matches, cobra.ShellCompDirectiveNoFileComp
}

// completeLogFormats provides shell completion for --log-format.
func completeLogFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var matches []string
	for _, f := range logFormats {
		if strings.HasPrefix(f, toComplete) {
			matches = append(matches, f)
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}
