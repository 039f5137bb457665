package main

import (
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the project's interfaces and integrations",
	Long: `Publish every interface, then every resolved integration, to the package
catalog configured under database.

Published packages are immutable: republishing identical content returns the
existing package, while changed content under a published name@version fails.

Examples:
  botdef publish
  BOTDEF_DATABASE_DSN=/var/lib/botdef/catalog.db botdef publish`,
	Args: cobra.NoArgs,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	app, proj, err := loadProject(cmd)
	if err != nil {
		return err
	}
	defer app.Shutdown()

	report, err := app.PublishProject(cmd.Context(), proj)
	if err != nil {
		return fail(cmd.ErrOrStderr(), "Publish failed", err.Error(), nil)
	}

	return render(cmd.OutOrStdout(), app.Config.Output.Format, newPublishList(report))
}
