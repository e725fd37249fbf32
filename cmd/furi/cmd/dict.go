package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/f3rmion/furi/internal/reading"
	"github.com/spf13/cobra"
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Build and check reading dictionaries",
	Long: `Commands for the character → readings dictionary used by segmentation
and auto mode.

A dictionary at $HOME/.config/furi/readings.json is picked up
automatically; --dict selects another file for a single run.`,
}

var dictBuildCmd = &cobra.Command{
	Use:   "build <kanji_full.json>",
	Short: "Build a dictionary from on/kun reading data",
	Long: `Convert a kanji data file mapping each character to its on and kun
readings into a furi dictionary. On readings come first, katakana is
folded to hiragana and okurigana after the dot is dropped.

The output format follows the extension: .json or .db (SQLite).

Example:
  furi dict build kanji_full.json -o ~/.config/furi/readings.json`,
	Args: cobra.ExactArgs(1),
	RunE: runDictBuild,
}

var dictConvertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Convert a dictionary between formats",
	Long: `Read any supported dictionary (.json, .jsonl, .yaml, .xml kanjidic2, .db)
and write it as .json or .db.

Example:
  furi dict convert kanjidic2.xml readings.db`,
	Args: cobra.ExactArgs(2),
	RunE: runDictConvert,
}

var dictCheckCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Validate a dictionary and show its size",
	Long: `Load a dictionary and report how many characters it covers. Without a
path the dictionary furi would use is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDictCheck,
}

var (
	dictBuildOutput string
	dictCheckSample int
)

func init() {
	rootCmd.AddCommand(dictCmd)
	dictCmd.AddCommand(dictBuildCmd)
	dictCmd.AddCommand(dictConvertCmd)
	dictCmd.AddCommand(dictCheckCmd)

	dictBuildCmd.Flags().StringVarP(&dictBuildOutput, "output", "o", "", "Output dictionary (.json or .db)")
	dictBuildCmd.MarkFlagRequired("output")

	dictCheckCmd.Flags().IntVarP(&dictCheckSample, "sample", "n", 5, "Number of entries to print")
}

func runDictBuild(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer f.Close()

	d, stats, err := reading.Build(f)
	if err != nil {
		return err
	}
	if err := reading.SaveFile(dictBuildOutput, d); err != nil {
		return err
	}

	fmt.Printf("Source records: %d\n", stats.Source)
	fmt.Printf("Kept:           %d\n", stats.Kept)
	fmt.Printf("Skipped:        %d\n", stats.Skipped)
	fmt.Printf("Wrote %s\n", dictBuildOutput)
	return nil
}

func runDictConvert(cmd *cobra.Command, args []string) error {
	d, err := reading.LoadFile(args[0])
	if err != nil {
		return err
	}
	if err := reading.SaveFile(args[1], d); err != nil {
		return err
	}
	fmt.Printf("Wrote %d entries to %s\n", d.Size(), args[1])
	return nil
}

func runDictCheck(cmd *cobra.Command, args []string) error {
	var d *reading.Dictionary
	var source string
	if len(args) == 1 {
		var err error
		if d, err = reading.LoadFile(args[0]); err != nil {
			return err
		}
		source = args[0]
	} else {
		store, path, err := loadDictionary(newLogger())
		if err != nil {
			return err
		}
		d, source = store.Snapshot(), path
		if source == "" {
			source = "(embedded)"
		}
	}

	fmt.Printf("Dictionary: %s\n", source)
	fmt.Printf("Entries:    %d\n", d.Size())
	entries := d.Entries()
	for _, e := range entries[:min(dictCheckSample, len(entries))] {
		fmt.Printf("  %s  %s\n", e.Character, strings.Join(e.Readings, ", "))
	}
	return nil
}
