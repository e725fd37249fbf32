package cmd

import (
	"fmt"
	"strings"

	"github.com/f3rmion/furi/internal/furigana"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

var segmentCmd = &cobra.Command{
	Use:   "segment <run> <reading>",
	Short: "Split a reading across the characters of a run",
	Long: `Show which part of a reading belongs to each character.

Numerals take their native readings first, other characters are split
where the next character's dictionary reading begins, and anything left
is divided evenly.

Examples:
  furi segment 校庭 こうてい
  furi segment 4人 よにん`,
	Args: cobra.ExactArgs(2),
	RunE: runSegment,
}

var segmentMarkup bool

func init() {
	rootCmd.AddCommand(segmentCmd)

	segmentCmd.Flags().BoolVar(&segmentMarkup, "markup", false, "Print the ruby markup instead of a table")
}

func runSegment(cmd *cobra.Command, args []string) error {
	log := newLogger()
	engine, _, _, err := newEngine(log)
	if err != nil {
		return err
	}

	seg, err := engine.Segment(args[0], args[1])
	if err != nil {
		return err
	}

	if segmentMarkup {
		fmt.Println(engine.Renderer().Render(seg))
		return nil
	}
	fmt.Print(formatSegmentation(seg))
	return nil
}

// formatSegmentation renders one row per character, columns aligned by
// display width.
func formatSegmentation(seg furigana.Segmentation) string {
	width := runewidth.StringWidth("Reading")
	for _, p := range seg {
		width = max(width, runewidth.StringWidth(p.Reading))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Char  %s\n", "Reading")
	fmt.Fprintf(&b, "----  %s\n", strings.Repeat("-", width))
	for _, p := range seg {
		fmt.Fprintf(&b, "%s  %s\n", runewidth.FillRight(string(p.Char), 4), p.Reading)
	}
	return b.String()
}
