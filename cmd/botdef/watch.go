package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/artpar/botdef/bootstrap"
	"github.com/artpar/botdef/config"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Revalidate the project whenever a definition file changes",
	Long: `Validate the project, then watch its directory tree and validate again
after every burst of changes to .yaml or .yml files.

When a config file is used it is watched too, and SIGHUP reloads it. Fields
such as project.dir only take effect on the next restart.

Examples:
  botdef watch
  botdef watch --dir ./project`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// projectValidator reloads and validates the project of an app.
type projectValidator struct {
	mu  sync.Mutex
	app *bootstrap.App
	cmd *cobra.Command
}

func (v *projectValidator) run(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := v.cmd.OutOrStdout()
	step(out, "validating %s", v.app.Config.Project.Dir)

	proj, err := v.app.LoadProject(ctx)
	if err != nil {
		v.app.Metrics.ConfigReloadErrors.Inc()
		reportLoadError(out, v.app.Config.Project.Dir, err)
		return
	}
	v.app.Metrics.ConfigReloads.Inc()

	for _, r := range v.app.ValidateBots(proj) {
		if r.Err != nil {
			failure(out, "%s (%s): %v", r.Bot, r.Source, r.Err)
			continue
		}
		success(out, "%s (%s)", r.Bot, r.Source)
	}
}

// setConfig swaps the configuration used by later runs. The project
// directory and debounce stay as the watcher was started with.
func (v *projectValidator) setConfig(c config.Change) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, path := range c.RestartRequired() {
		if path == "project.dir" && projectDir != "" {
			continue
		}
		warning(v.cmd.OutOrStdout(), "%s changed; restart watch to use it", path)
	}

	next := *c.New
	next.Project = v.app.Config.Project
	next.Project.Workers = c.New.Project.Workers
	if outputFormat != "" {
		next.Output.Format = outputFormat
	}
	v.app.Config = &next

	if lvl, err := zerolog.ParseLevel(next.Logging.Level); err == nil {
		v.app.Logger = v.app.Logger.Level(lvl)
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Shutdown()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	v := &projectValidator{app: app, cmd: cmd}
	v.run(ctx)

	if path := configPath(); path != "" {
		holder, err := config.NewHolder(path, app.Logger)
		if err != nil {
			return err
		}
		defer holder.Stop()

		holder.OnChange(func(c config.Change) {
			v.setConfig(c)
			v.run(ctx)
		})
		if err := holder.WatchFile(); err != nil {
			return err
		}
		holder.WatchSignals()
	}

	watcher, err := config.NewProjectWatcher(app.Config.Project.Dir, app.Config.Project.Debounce, app.Logger)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	if err := watcher.Start(func() { v.run(ctx) }); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}

// configPath returns the config file in use, or "" when configuration comes
// from the environment.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if _, err := os.Stat(config.DefaultPath); err == nil {
		return config.DefaultPath
	}
	return ""
}
