package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/botdef/core/bot"
	"github.com/artpar/botdef/core/dispatch"
)

var (
	resolveAction string
	resolveEvent  string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <bot>",
	Short: "Show how a bot's providers resolve to integrations",
	Long: `Resolve every interface a bot depends on to the installed integration that
implements it, and print the bot's dispatch table.

A provider is an installed integration or an interface dependency. Calls to
provider.member are routed to the integration's own name for that member.

Examples:
  botdef resolve support
  botdef resolve support --action sentiment.classify
  botdef resolve support --event sentiment.classified`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVar(&resolveAction, "action", "", "resolve a single provider.action")
	resolveCmd.Flags().StringVar(&resolveEvent, "event", "", "resolve a single provider.event")
}

// resolution is the json and yaml form of the resolve output.
type resolution struct {
	Bot        string         `json:"bot" yaml:"bot"`
	Interfaces resolutionList `json:"interfaces" yaml:"interfaces"`
	Routes     routeList      `json:"routes" yaml:"routes"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	app, proj, err := loadProject(cmd)
	if err != nil {
		return err
	}
	defer app.Shutdown()

	out := cmd.OutOrStdout()
	name := args[0]

	b, ok := proj.Bot(name)
	if !ok {
		return fmt.Errorf("bot %s not found", name)
	}

	resolved, err := bot.ResolveInterfaces(b)
	if err != nil {
		return fail(cmd.ErrOrStderr(), "Unsatisfied dependency", err.Error(), nil)
	}
	table, err := dispatch.BuildTable(b)
	if err != nil {
		return err
	}

	if resolveAction != "" || resolveEvent != "" {
		return resolveOne(out, table, resolveAction, resolveEvent)
	}

	format := app.Config.Output.Format
	if format != "table" {
		return render(out, format, resolution{
			Bot:        name,
			Interfaces: newResolutionList(resolved),
			Routes:     newRouteList(table),
		})
	}

	if err := render(out, format, newResolutionList(resolved)); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return render(out, format, newRouteList(table))
}

func resolveOne(out io.Writer, table *dispatch.Table, action, event string) error {
	if action != "" {
		provider, member, err := splitMember(action)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, table.Resolve(provider, member))
	}
	if event != "" {
		provider, member, err := splitMember(event)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, table.EventType(provider, member))
	}
	return nil
}

func splitMember(s string) (provider, member string, err error) {
	provider, member, ok := strings.Cut(s, ".")
	if !ok || provider == "" || member == "" {
		return "", "", fmt.Errorf("invalid member %q: expected provider.member", s)
	}
	return provider, member, nil
}
