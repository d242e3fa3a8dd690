package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zeusync/editor/internal/editor"
)

var (
	sceneName string
	force     bool

	newCmd = &cobra.Command{
		Use:   "new <scene>",
		Short: "Write a demo scene with one of each component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}

			name := sceneName
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}
			sc, err := editor.DemoScene(name)
			if err != nil {
				return err
			}
			return app.SaveScene(cmd.Context(), path, sc)
		},
	}
)

func init() {
	newCmd.Flags().StringVar(&sceneName, "name", "", "scene name, defaults to the file name")
	newCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
}
