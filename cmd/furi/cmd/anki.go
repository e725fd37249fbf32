package cmd

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/f3rmion/furi/internal/anki"
	"github.com/f3rmion/furi/internal/kana"
	"github.com/spf13/cobra"
)

var ankiCmd = &cobra.Command{
	Use:   "anki",
	Short: "Work with Anki decks",
	Long:  `Commands for inspecting Anki .apkg files and adding furigana to their notes.`,
}

var ankiInspectCmd = &cobra.Command{
	Use:   "inspect <file.apkg>",
	Short: "Inspect an Anki deck",
	Long: `Inspect an Anki .apkg file to see its structure:
  - Decks
  - Note types (models) and their fields
  - Sample notes

Example:
  furi anki inspect japanese.apkg`,
	Args: cobra.ExactArgs(1),
	RunE: runAnkiInspect,
}

var ankiAnnotateCmd = &cobra.Command{
	Use:   "annotate <in.apkg>",
	Short: "Add furigana to the notes of a deck",
	Long: `Annotate note fields and write a new .apkg file.

Fields are treated as HTML fragments, so existing formatting and ruby are
kept. Sort fields and checksums are recomputed from the original text, so
the annotated deck still matches duplicates and searches as before.

Examples:
  furi anki annotate japanese.apkg -o japanese.furigana.apkg
  furi anki annotate japanese.apkg -o out.apkg --field Expression --mode auto`,
	Args: cobra.ExactArgs(1),
	RunE: runAnkiAnnotate,
}

var ankiRevertCmd = &cobra.Command{
	Use:   "revert <in.apkg>",
	Short: "Remove furigana added by annotate",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnkiRevert,
}

var (
	ankiInspectLimit int
	ankiFields       []string
	ankiOutput       string
)

func init() {
	rootCmd.AddCommand(ankiCmd)
	ankiCmd.AddCommand(ankiInspectCmd)
	ankiCmd.AddCommand(ankiAnnotateCmd)
	ankiCmd.AddCommand(ankiRevertCmd)

	ankiInspectCmd.Flags().IntVarP(&ankiInspectLimit, "limit", "n", 5, "Number of sample notes to show")

	for _, c := range []*cobra.Command{ankiAnnotateCmd, ankiRevertCmd} {
		c.Flags().StringSliceVarP(&ankiFields, "field", "f", nil, "Field names to process (all fields if not specified)")
		c.Flags().StringVarP(&ankiOutput, "output", "o", "", "Output .apkg file")
		c.MarkFlagRequired("output")
	}
}

func runAnkiInspect(cmd *cobra.Command, args []string) error {
	path := args[0]

	fmt.Printf("Opening: %s\n\n", path)

	pkg, err := anki.Open(path)
	if err != nil {
		return fmt.Errorf("opening package: %w", err)
	}
	defer pkg.Close()

	fmt.Print(pkg.Summary())
	fmt.Println()

	for _, id := range modelIDs(pkg) {
		m := pkg.Models[id]
		names := make([]string, len(m.Fields))
		for i, f := range m.Fields {
			names[i] = f.Name
		}
		fmt.Printf("Note type %q fields: %s\n", m.Name, strings.Join(names, ", "))
	}
	fmt.Println()

	limit := min(ankiInspectLimit, len(pkg.Notes))
	fmt.Printf("Sample notes (%d of %d):\n", limit, len(pkg.Notes))
	for _, n := range pkg.Notes[:limit] {
		fmt.Printf("\n  Note %d:\n", n.ID)
		for _, name := range pkg.FieldNames(n) {
			value := pkg.FieldValue(n, name)
			marker := " "
			if kana.HasKanji(value) {
				marker = "*"
			}
			fmt.Printf("   %s %s: %s\n", marker, name, truncate(value, 60))
		}
	}
	fmt.Println("\n  * field contains kanji")
	return nil
}

func runAnkiAnnotate(cmd *cobra.Command, args []string) error {
	log := newLogger()

	mode, err := resolveMode(log)
	if err != nil {
		return err
	}
	engine, _, _, err := newEngine(log)
	if err != nil {
		return err
	}

	pkg, err := anki.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening package: %w", err)
	}
	defer pkg.Close()

	st, err := pkg.Annotate(engine, mode, ankiFields)
	if err != nil {
		return fmt.Errorf("annotating notes: %w", err)
	}
	if err := pkg.SaveAs(ankiOutput); err != nil {
		return err
	}

	fmt.Printf("Annotated %d fields in %d of %d notes (mode %s)\n", st.Fields, st.Notes, len(pkg.Notes), mode)
	fmt.Printf("Wrote %s\n", ankiOutput)
	return nil
}

func runAnkiRevert(cmd *cobra.Command, args []string) error {
	pkg, err := anki.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening package: %w", err)
	}
	defer pkg.Close()

	st, err := pkg.Revert(ankiFields)
	if err != nil {
		return fmt.Errorf("reverting notes: %w", err)
	}
	if err := pkg.SaveAs(ankiOutput); err != nil {
		return err
	}

	fmt.Printf("Reverted %d fields in %d notes\n", st.Fields, st.Notes)
	fmt.Printf("Wrote %s\n", ankiOutput)
	return nil
}

func modelIDs(pkg *anki.Package) []int64 {
	ids := make([]int64, 0, len(pkg.Models))
	for id := range pkg.Models {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
