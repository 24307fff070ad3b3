package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"dropcast/internal/presets"
)

var (
	exportDir   string
	exportForce bool
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List or export parameter presets",
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := library.All()
		if err != nil {
			return err
		}
		for _, p := range all {
			fmt.Printf("%-14s %-13s %s\n", p.Name, p.Kind, p.Description)
		}
		return nil
	},
}

var presetsExportCmd = &cobra.Command{
	Use:   "export [name...]",
	Short: "Write presets as editable YAML files",
	Long: `Export writes the named presets (all built-ins when no names are given)
as YAML files into the presets directory, where they can be edited and
will shadow the shipped versions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := exportDir
		if dir == "" {
			dir = cfg.PresetsDir
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}

		var selected []presets.Preset
		if len(args) == 0 {
			selected = presets.Builtins()
		} else {
			for _, name := range args {
				p, err := library.Find(name)
				if err != nil {
					return err
				}
				selected = append(selected, p)
			}
		}

		for _, p := range selected {
			path := filepath.Join(dir, p.Name+".yaml")
			if !exportForce {
				if _, err := os.Stat(path); err == nil {
					log.Warn().Str("path", path).Msg("Preset file exists, skipping (use --force to overwrite)")
					continue
				}
			}
			doc, err := presets.Export(p)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, doc, 0o644); err != nil {
				return err
			}
			fmt.Println(path)
		}
		library.Invalidate()
		return nil
	},
}

func init() {
	presetsExportCmd.Flags().StringVar(&exportDir, "dir", "", "Target directory (defaults to the presets directory)")
	presetsExportCmd.Flags().BoolVar(&exportForce, "force", false, "Overwrite existing files")
	presetsCmd.AddCommand(presetsListCmd)
	presetsCmd.AddCommand(presetsExportCmd)
}
