package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/f3rmion/furi/internal/document"
	"github.com/f3rmion/furi/internal/textenc"
	"github.com/spf13/cobra"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [file|-]",
	Short: "Add furigana to a document",
	Long: `Annotate an HTML, Markdown or plain-text document and write the result.

The format is taken from the file extension unless --format is given;
standard input is read as plain text by default. Legacy encodings are
detected for HTML or can be forced with --encoding, and the output keeps
the input's encoding.

Examples:
  furi annotate page.html -o page.furigana.html
  furi annotate notes.md --mode auto
  echo '漢字(かんじ)' | furi annotate`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnnotate,
}

var (
	annotateFormat   string
	annotateOutput   string
	annotateEncoding string
)

func init() {
	rootCmd.AddCommand(annotateCmd)

	annotateCmd.Flags().StringVarP(&annotateFormat, "format", "f", "", "Input format: html, markdown or text (default from extension)")
	annotateCmd.Flags().StringVarP(&annotateOutput, "output", "o", "", "Output file (stdout if not specified)")
	annotateCmd.Flags().StringVarP(&annotateEncoding, "encoding", "e", "auto", "Input encoding: auto, utf-8, euc-jp or sjis")
}

// readInput reads a file argument, or stdin for no argument or "-".
func readInput(args []string) ([]byte, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("reading stdin: %w", err)
		}
		return data, "", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, args[0], fmt.Errorf("reading %s: %w", args[0], err)
	}
	return data, args[0], nil
}

// writeOutput writes data to path, or stdout when path is empty or "-".
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func inputFormat(flag, path string) (document.Format, error) {
	if flag != "" {
		return document.ParseFormat(flag)
	}
	if path == "" {
		return document.Text, nil
	}
	return document.Detect(path), nil
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	log := newLogger()

	mode, err := resolveMode(log)
	if err != nil {
		return err
	}
	enc, err := textenc.Parse(annotateEncoding)
	if err != nil {
		return err
	}
	engine, _, _, err := newEngine(log)
	if err != nil {
		return err
	}

	raw, path, err := readInput(args)
	if err != nil {
		return err
	}
	format, err := inputFormat(annotateFormat, path)
	if err != nil {
		return err
	}
	text, used, err := textenc.Decode(raw, enc)
	if err != nil {
		return err
	}

	res, err := document.NewProcessor(engine, log).Annotate([]byte(text), format, mode)
	if err != nil {
		return fmt.Errorf("annotating: %w", err)
	}
	out, err := textenc.Encode(string(res.Output), used)
	if err != nil {
		return err
	}

	log.Debug("annotated", "input", displayName(path), "format", format, "mode", mode, "changed", res.Changed, "encoding", used)
	return writeOutput(annotateOutput, out)
}

func displayName(path string) string {
	if path == "" {
		return "<stdin>"
	}
	return path
}
