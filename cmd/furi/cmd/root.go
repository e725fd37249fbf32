// Package cmd contains all CLI commands for the furi tool.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/f3rmion/furi/internal/furigana"
	"github.com/f3rmion/furi/internal/reading"
	"github.com/f3rmion/furi/internal/settings"
	"github.com/f3rmion/furi/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// DictFileName is the dictionary looked up in the config directory when
// --dict is not given.
const DictFileName = "readings.json"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "furi",
	Short: "Furigana annotation for Japanese text",
	Long: `furi turns kanji written with a bracketed reading, such as 漢字(かんじ),
into per-character ruby markup, or annotates every known kanji automatically.

Modes:
  off      leave text as written
  bracket  convert 漢字(かんじ) patterns (default)
  auto     annotate each known kanji with its most common reading

It works on HTML, Markdown and plain text, on Anki decks, as a file
watcher and as an HTTP service.

Running 'furi' without arguments launches the interactive TUI.`,
	RunE: runTUI,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config directory (default is $HOME/.config/furi)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")
	rootCmd.PersistentFlags().String("dict", "", "reading dictionary (.json, .jsonl, .yaml, .xml or .db)")
	rootCmd.PersistentFlags().String("mode", "", "annotation mode for this run: off, bracket or auto")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("dict", rootCmd.PersistentFlags().Lookup("dict"))
	viper.BindPFlag("mode", rootCmd.PersistentFlags().Lookup("mode"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.Set("config_dir", cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}
		viper.Set("config_dir", filepath.Join(home, ".config", "furi"))
	}

	viper.SetEnvPrefix("FURI")
	viper.AutomaticEnv()
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	return viper.GetString("config_dir")
}

// newLogger builds the process logger. Diagnostics go to stderr so command
// output on stdout stays clean.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// dictPath resolves the dictionary file: --dict, then the config directory.
// An empty result means the embedded table.
func dictPath() string {
	if p := viper.GetString("dict"); p != "" {
		return p
	}
	p := filepath.Join(getConfigDir(), DictFileName)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// loadDictionary loads the resolved dictionary into a store.
func loadDictionary(log *slog.Logger) (*reading.Store, string, error) {
	path := dictPath()
	if path == "" {
		d := reading.Default()
		log.Debug("using embedded dictionary", "entries", d.Size())
		return reading.NewStore(d), "", nil
	}
	d, err := reading.LoadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("loading dictionary: %w", err)
	}
	log.Debug("dictionary loaded", "path", path, "entries", d.Size())
	return reading.NewStore(d), path, nil
}

// newEngine builds an engine over the resolved dictionary.
func newEngine(log *slog.Logger) (*furigana.Engine, *reading.Store, string, error) {
	store, path, err := loadDictionary(log)
	if err != nil {
		return nil, nil, path, err
	}
	return furigana.NewEngine(store, nil, log), store, path, nil
}

// loadSettings reads the stored settings and applies the --mode override.
func loadSettings(log *slog.Logger) (*settings.Store, settings.Settings, error) {
	store := settings.NewStore(getConfigDir(), log)
	st := store.Load()
	if m := viper.GetString("mode"); m != "" {
		mode, err := settings.ParseMode(m)
		if err != nil {
			return store, st, err
		}
		st.Mode = mode
	}
	return store, st, nil
}

// resolveMode returns the mode for one command run.
func resolveMode(log *slog.Logger) (settings.Mode, error) {
	_, st, err := loadSettings(log)
	if err != nil {
		return "", err
	}
	return st.Mode, nil
}

// runTUI launches the interactive TUI.
func runTUI(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(getConfigDir(), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file in the config dir.
	log := slog.New(slog.DiscardHandler)
	if viper.GetBool("verbose") {
		f, err := os.OpenFile(filepath.Join(getConfigDir(), "furi.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		log = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	engine, _, _, err := newEngine(log)
	if err != nil {
		return err
	}
	store, st, err := loadSettings(log)
	if err != nil {
		return err
	}

	return tui.Run(tui.NewApp(engine, store, st, log))
}
