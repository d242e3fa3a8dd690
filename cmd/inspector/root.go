package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeusync/editor/internal/core/events/bus"
	"github.com/zeusync/editor/internal/editor"
	"github.com/zeusync/editor/internal/editor/config"
	"github.com/zeusync/editor/internal/injector"
)

var (
	configPath string
	app        *editor.Editor

	rootCmd = &cobra.Command{
		Use:          "inspector",
		Short:        "Inspect and edit scene files",
		Long:         "Inspector reads scene files through the runtime type registry and shows, dumps or edits every reflected component field.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg := config.Default()
			if configPath != "" {
				if cfg, err = config.LoadFile(configPath); err != nil {
					return err
				}
			}
			if app, err = injector.InitializeEditor(cfg); err != nil {
				return err
			}
			app.Events.Subscribe(bus.SceneSaved, func(ev bus.Event) error {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", ev.Scene)
				return err
			})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				_ = app.Logger.Sync()
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "editor config file (yaml)")
	rootCmd.AddCommand(typesCmd, dumpCmd, editCmd, newCmd)
}
