package main

import (
	"context"
	"errors"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/zeusync/editor/internal/core/observability/log"
)

var (
	readOnly bool

	editCmd = &cobra.Command{
		Use:   "edit <scene>",
		Short: "Edit a scene in the terminal property inspector",
		Long:  "Up/Down select a field, Left/Right change it, Tab picks a vector component, Space toggles, PgUp/PgDn switch entity, Esc quits and saves.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			sc, err := app.OpenScene(cmd.Context(), path)
			if err != nil {
				return err
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}
			if err = screen.Init(); err != nil {
				return err
			}
			inspector := app.Inspector(screen, sc)
			err = inspector.Run(cmd.Context())
			screen.Fini()
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			if !inspector.Dirty() {
				return nil
			}
			if readOnly {
				app.Logger.Warn("changes discarded", log.String("path", path))
				return nil
			}
			return app.SaveScene(context.WithoutCancel(cmd.Context()), path, sc)
		},
	}
)

func init() {
	editCmd.Flags().BoolVar(&readOnly, "read-only", false, "discard edits on exit")
}
