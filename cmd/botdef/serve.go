package main

import (
	"github.com/spf13/cobra"
)

var servePublish bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the package catalog over HTTP",
	Long: `Start the catalog API server.

Routes:
  GET /interfaces                        published interfaces
  GET /interfaces/{name}/{version}       one interface
  GET /integrations                      published integrations
  GET /integrations/{name}/{version}     one integration
  GET /packages/{id}                     any package by ID
  GET /.well-known/openapi.json          API description (Swagger UI at /swagger/)
  GET /healthz, /version, /metrics

With --publish (the default) the project is loaded and published first.

Examples:
  botdef serve
  BOTDEF_DATABASE_DRIVER=memory botdef serve --dir ./project`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&servePublish, "publish", true, "publish the project before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	if !servePublish {
		app, err := newApp()
		if err != nil {
			return err
		}
		return app.Run()
	}

	app, proj, err := loadProject(cmd)
	if err != nil {
		return err
	}
	report, err := app.PublishProject(cmd.Context(), proj)
	if err != nil {
		app.Shutdown()
		return fail(cmd.ErrOrStderr(), "Publish failed", err.Error(), nil)
	}
	success(cmd.OutOrStdout(), "published %d interfaces, %d integrations",
		len(report.Interfaces), len(report.Integrations))

	return app.Run()
}
