package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/artpar/botdef/core/codegen"
	"github.com/artpar/botdef/core/formatter"
	"github.com/artpar/botdef/core/integration"
)

var (
	genFormat string
	genOut    string
)

var genCmd = &cobra.Command{
	Use:   "gen [integration...]",
	Short: "Write interface modules for integrations",
	Long: `Write one module per interface statement of each integration, plus an
index module, to <out>/<integration>/.

Without arguments every integration of the project is generated.

Examples:
  botdef gen
  botdef gen nlp --format json --out ./generated`,
	RunE: runGen,
}

func init() {
	rootCmd.AddCommand(genCmd)

	genCmd.Flags().StringVar(&genFormat, "format", "yaml", "module format: json or yaml")
	genCmd.Flags().StringVar(&genOut, "out", "", "output directory (default: output.dir)")
}

func runGen(cmd *cobra.Command, args []string) error {
	app, proj, err := loadProject(cmd)
	if err != nil {
		return err
	}
	defer app.Shutdown()

	f, err := formatter.NewRegistry().Get(genFormat)
	if err != nil {
		return err
	}

	outDir := genOut
	if outDir == "" {
		outDir = app.Config.Output.Dir
	}

	var defs []integration.Definition
	if len(args) == 0 {
		defs = proj.Integrations()
	}
	for _, name := range args {
		def, ok := proj.Registry.Integration(name)
		if !ok {
			return fmt.Errorf("integration %s not found", name)
		}
		defs = append(defs, def)
	}

	out := cmd.OutOrStdout()
	for _, def := range defs {
		modules, err := codegen.InterfacesModules(def, f)
		if err != nil {
			return fmt.Errorf("generate %s: %w", def.Ref(), err)
		}
		dir := filepath.Join(outDir, def.Name)
		if err := codegen.Write(dir, modules); err != nil {
			return err
		}
		success(out, "%s: %d modules written to %s", def.Ref(), len(modules), dir)
	}
	return nil
}
