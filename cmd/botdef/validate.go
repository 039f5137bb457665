package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the project's bots",
	Long: `Load the project, resolve every integration and validate every bot.

Checks:
  - Definition files parse and names do not conflict
  - Integrations bind every interface entity to an entity they own
  - Bot action, event and state names are camelCase
  - Every interface a bot depends on is implemented by an installed integration

Examples:
  botdef validate
  botdef validate --dir ./project -o json`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	app, proj, err := loadProject(cmd)
	if err != nil {
		return err
	}
	defer app.Shutdown()

	out := cmd.OutOrStdout()
	results := app.ValidateBots(proj)

	if app.Config.Output.Format != "table" {
		if err := render(out, app.Config.Output.Format, newValidationList(results)); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "Validating %s...\n\n", proj.Dir)
		success(out, "%d interfaces, %d integrations resolved", len(proj.Interfaces()), len(proj.Integrations()))
		for _, r := range results {
			if r.Err != nil {
				failure(out, "%s (%s): %v", r.Bot, r.Source, r.Err)
				continue
			}
			success(out, "%s (%s)", r.Bot, r.Source)
		}
	}

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d bots failed validation", failed, len(results))
	}

	if app.Config.Output.Format == "table" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Project is valid.")
	}
	return nil
}
