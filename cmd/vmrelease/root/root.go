package root

import (
	"github.com/flarebyte/vmrelease/cmd/vmrelease/deploy"
	"github.com/flarebyte/vmrelease/cmd/vmrelease/plan"
	"github.com/flarebyte/vmrelease/cmd/vmrelease/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for vmrelease.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vmrelease",
		Short: "Build, package and publish a release across Vagrant build VMs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(version.VersionCmd)
	cmd.AddCommand(deploy.NewCmd())
	cmd.AddCommand(plan.NewCmd())

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
