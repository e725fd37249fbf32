package cmd

import (
	"fmt"
	"strings"

	"github.com/f3rmion/furi/internal/furigana"
	"github.com/f3rmion/furi/internal/kana"
	"github.com/f3rmion/furi/internal/reading"
	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <characters>",
	Short: "Show candidate readings for characters",
	Long: `Look up each kanji or digit and print its candidate readings, most
common first. The first reading is the one auto mode uses.

Example:
  furi lookup 日本
  furi lookup 3人`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	log := newLogger()
	store, path, err := loadDictionary(log)
	if err != nil {
		return err
	}
	if path != "" {
		log.Debug("lookup dictionary", "path", path)
	}

	fmt.Print(formatLookup(store.Snapshot(), strings.Join(args, "")))
	return nil
}

// formatLookup prints one line per kanji or digit in text.
func formatLookup(dict *reading.Dictionary, text string) string {
	var b strings.Builder
	for _, r := range text {
		if !kana.IsKanji(r) && !kana.IsDigit(r) {
			continue
		}
		readings, ok := dict.Lookup(r)
		source := "dictionary"
		if !ok {
			readings, ok = furigana.NumeralReadings(r)
			source = "numeral"
		}
		switch {
		case !ok:
			fmt.Fprintf(&b, "%c  (not found)\n", r)
		case len(readings) == 0:
			fmt.Fprintf(&b, "%c  (no readings)\n", r)
		default:
			fmt.Fprintf(&b, "%c  %s  [%s]\n", r, strings.Join(readings, ", "), source)
		}
	}
	if b.Len() == 0 {
		return "no kanji or digits in input\n"
	}
	return b.String()
}
