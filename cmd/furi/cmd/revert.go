package cmd

import (
	"fmt"

	"github.com/f3rmion/furi/internal/document"
	"github.com/f3rmion/furi/internal/textenc"
	"github.com/spf13/cobra"
)

var revertCmd = &cobra.Command{
	Use:   "revert [file|-]",
	Short: "Remove furigana added by annotate",
	Long: `Restore the original text of an HTML document annotated by furi.

Every converted span is replaced by the text it was created from, so
annotating and reverting gives back the input document.

Example:
  furi revert page.furigana.html -o page.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRevert,
}

var (
	revertOutput   string
	revertEncoding string
)

func init() {
	rootCmd.AddCommand(revertCmd)

	revertCmd.Flags().StringVarP(&revertOutput, "output", "o", "", "Output file (stdout if not specified)")
	revertCmd.Flags().StringVarP(&revertEncoding, "encoding", "e", "auto", "Input encoding: auto, utf-8, euc-jp or sjis")
}

func runRevert(cmd *cobra.Command, args []string) error {
	log := newLogger()

	enc, err := textenc.Parse(revertEncoding)
	if err != nil {
		return err
	}
	raw, path, err := readInput(args)
	if err != nil {
		return err
	}
	text, used, err := textenc.Decode(raw, enc)
	if err != nil {
		return err
	}

	res, err := document.NewProcessor(nil, log).Revert([]byte(text), document.HTML)
	if err != nil {
		return fmt.Errorf("reverting: %w", err)
	}
	out, err := textenc.Encode(string(res.Output), used)
	if err != nil {
		return err
	}

	log.Debug("reverted", "input", displayName(path), "restored", res.Changed)
	return writeOutput(revertOutput, out)
}
