package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/ctxpack/internal/config"
)

const (
	initUse              = "init"
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Write a default configuration file to ./.ctxpack.yaml,
or to ~/.ctxpack/config.yaml with --global. Existing files are kept unless --force is given.`
	globalFlagName        = "global"
	globalFlagDescription = "write the per-user configuration instead of the local one"
	forceFlagName         = "force"
	forceFlagDescription  = "overwrite an existing configuration file"
	initCompletedTemplate = "Configuration written to %s\n"
)

func createInitCommand(runtimeDependencies dependencies) *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			path, err := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: runtimeDependencies.workingDirectory,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(runtimeDependencies.stdout, initCompletedTemplate, path)
			return nil
		},
	}
	initCommand.Flags().BoolVar(&global, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&force, forceFlagName, false, forceFlagDescription)
	return initCommand
}
