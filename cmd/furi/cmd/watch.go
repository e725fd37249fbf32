package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/f3rmion/furi/internal/document"
	"github.com/f3rmion/furi/internal/textenc"
	"github.com/f3rmion/furi/internal/watch"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <files...>",
	Short: "Re-annotate documents whenever they change",
	Long: `Annotate each file once, then again every time it is saved.

Output goes to <name>.furigana.<ext> beside the input, or into --out-dir.
When a dictionary file is in use it is watched too, and a change reloads
it and re-annotates every file. The mode is read from the settings on
each run, so switching modes in the TUI takes effect on the next save.

Example:
  furi watch lesson.html notes.md --out-dir build/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

var (
	watchOutDir   string
	watchEncoding string
	watchDelay    time.Duration
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchOutDir, "out-dir", "", "Directory for annotated copies (default: beside each input)")
	watchCmd.Flags().StringVarP(&watchEncoding, "encoding", "e", "auto", "Input encoding: auto, utf-8, euc-jp or sjis")
	watchCmd.Flags().DurationVar(&watchDelay, "delay", watch.DefaultDelay, "Debounce window for bursts of changes")
}

func runWatch(cmd *cobra.Command, args []string) error {
	log := newLogger()

	enc, err := textenc.Parse(watchEncoding)
	if err != nil {
		return err
	}
	if _, err := resolveMode(log); err != nil {
		return err
	}
	engine, store, dict, err := newEngine(log)
	if err != nil {
		return err
	}
	if watchOutDir != "" {
		if err := os.MkdirAll(watchOutDir, 0755); err != nil {
			return err
		}
	}

	processor := document.NewProcessor(engine, log)
	w, err := watch.New(watch.Options{
		Files:    args,
		DictPath: dict,
		Store:    store,
		Delay:    watchDelay,
		Process: func(path string) error {
			mode, err := resolveMode(log)
			if err != nil {
				return err
			}
			dst := document.OutputPath(path, watchOutDir)
			res, err := processor.AnnotateFile(path, dst, document.Detect(path), mode, enc)
			if err != nil {
				return err
			}
			log.Info("annotated", "src", path, "dst", dst, "mode", mode, "changed", res.Changed)
			return nil
		},
	}, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("watching", "files", len(args), "dictionary", dict)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
