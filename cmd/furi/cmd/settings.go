package cmd

import (
	"fmt"

	"github.com/f3rmion/furi/internal/settings"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Aliases: []string{"interactive", "i", "ui"},
	Short:   "Choose the annotation mode",
	Long: `Without flags, open the interactive TUI on its mode panel. With --set,
store a mode directly; with --show, print the stored settings.

Examples:
  furi settings
  furi settings --set auto
  furi settings --show`,
	Args: cobra.NoArgs,
	RunE: runSettings,
}

var (
	settingsSet  string
	settingsShow bool
)

func init() {
	rootCmd.AddCommand(settingsCmd)

	settingsCmd.Flags().StringVar(&settingsSet, "set", "", "Store this mode: off, bracket or auto")
	settingsCmd.Flags().BoolVar(&settingsShow, "show", false, "Print the stored settings")
}

func runSettings(cmd *cobra.Command, args []string) error {
	if settingsSet == "" && !settingsShow {
		return runTUI(cmd, args)
	}

	log := newLogger()
	store := settings.NewStore(getConfigDir(), log)
	st := store.Load()

	if settingsSet != "" {
		mode, err := settings.ParseMode(settingsSet)
		if err != nil {
			return err
		}
		st.Mode = mode
		if err := store.Save(st); err != nil {
			return err
		}
	}

	fmt.Printf("Settings: %s\n", store.Path())
	fmt.Printf("  mode:   %s  %s\n", st.Mode, st.Mode.Status())
	fmt.Printf("  hotkey: %s\n", st.Hotkey)
	return nil
}
