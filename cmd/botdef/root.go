package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/artpar/botdef/bootstrap"
	"github.com/artpar/botdef/config"
	"github.com/artpar/botdef/core/formatter"
	"github.com/artpar/botdef/core/manifest"
	"github.com/artpar/botdef/core/registry"
)

var (
	// Global flags
	cfgFile      string
	projectDir   string
	outputFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "botdef",
	Short: "Resolve and validate declarative bot definitions",
	Long: `botdef works on a project directory of interface, integration and bot
definitions:

  interfaces/     abstract contracts (entities, actions, events, channels)
  integrations/   concrete providers and the interfaces they implement
  bots/           bots, their installed integrations and interface dependencies

Quick start:
  botdef validate          # Check every bot's dependencies are satisfied
  botdef describe bots     # List the project's bots
  botdef resolve <bot>     # Show which integration serves each dependency
  botdef gen               # Write interface modules for each integration

Catalog:
  botdef publish           # Publish the project's packages
  botdef serve             # Serve the package catalog over HTTP`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: "+config.DefaultPath+" if present)")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "d", "", "project directory (overrides project.dir)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: table, json or yaml (overrides output.format)")
}

// loadConfig loads configuration and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, err
	}
	if projectDir != "" {
		cfg.Project.Dir = projectDir
	}
	if outputFormat != "" {
		cfg.Output.Format = outputFormat
	}
	return cfg, nil
}

func newApp() (*bootstrap.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, bootstrap.WithVersion(version))
}

// loadProject creates the app and loads its project. Load failures are
// printed before being returned.
func loadProject(cmd *cobra.Command) (*bootstrap.App, *manifest.Project, error) {
	app, err := newApp()
	if err != nil {
		return nil, nil, err
	}

	proj, err := app.LoadProject(cmd.Context())
	if err != nil {
		app.Shutdown()
		return nil, nil, reportLoadError(cmd.ErrOrStderr(), app.Config.Project.Dir, err)
	}
	return app, proj, nil
}

func reportLoadError(w io.Writer, dir string, err error) error {
	var conflicts *registry.ConflictError
	if errors.As(err, &conflicts) {
		lines := make([]string, len(conflicts.Conflicts))
		for i, c := range conflicts.Conflicts {
			lines[i] = c.Error()
		}
		return fail(w, "Declaration conflicts",
			fmt.Sprintf("The project in %s declares the same name more than once.", dir),
			lines)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fail(w, "Project failed to load", err.Error(), nil)
}

// render writes v in the configured output format.
func render(w io.Writer, format string, v any) error {
	f, err := formatter.NewRegistry().Get(format)
	if err != nil {
		return err
	}
	return f.Format(w, v, formatter.Options{})
}
