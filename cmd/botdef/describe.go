package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artpar/botdef/core/contract"
	"github.com/artpar/botdef/core/manifest"
)

var describeCmd = &cobra.Command{
	Use:   "describe <interfaces|integrations|bots> | <interface|integration|bot> <name>",
	Short: "Describe project definitions",
	Long: `List the project's interfaces, integrations or bots, or describe one of them.

The table format shows a summary. The json and yaml formats show the resolved
definition: an integration includes the members and binding keys merged from
every interface it implements.

Examples:
  botdef describe interfaces
  botdef describe interface sentiment@1.0.0
  botdef describe integration nlp -o yaml
  botdef describe bot support`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	app, proj, err := loadProject(cmd)
	if err != nil {
		return err
	}
	defer app.Shutdown()

	v, err := describe(proj, app.Config.Output.Format, args)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), app.Config.Output.Format, v)
}

// describe selects the value to render for args.
func describe(proj *manifest.Project, format string, args []string) (any, error) {
	table := format == "table"

	if len(args) == 1 {
		switch args[0] {
		case "interfaces":
			return newInterfaceList(proj), nil
		case "integrations":
			return newIntegrationList(proj), nil
		case "bots":
			return newBotList(proj), nil
		}
		return nil, fmt.Errorf("unknown listing %q (want interfaces, integrations or bots)", args[0])
	}

	kind, name := args[0], args[1]
	switch kind {
	case "interface":
		ifaceName, version, err := contract.ParseRef(name)
		if err != nil {
			return nil, err
		}
		iface, ok := proj.Registry.Interface(ifaceName, version)
		if !ok {
			return nil, fmt.Errorf("interface %s not found", name)
		}
		if table {
			return newInterfaceMembers(iface), nil
		}
		return iface, nil

	case "integration":
		def, ok := proj.Registry.Integration(name)
		if !ok {
			return nil, fmt.Errorf("integration %s not found", name)
		}
		if table {
			return newBindingList(def), nil
		}
		return def, nil

	case "bot":
		b, ok := proj.Bot(name)
		if !ok {
			return nil, fmt.Errorf("bot %s not found", name)
		}
		if table {
			return newBotMembers(b), nil
		}
		return b, nil
	}

	return nil, fmt.Errorf("unknown kind %q (want interface, integration or bot)", kind)
}
