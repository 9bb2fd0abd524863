// Package cli implements the bookpress command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opd-ai/bookpress/config"
	"github.com/opd-ai/bookpress/format"
	"github.com/opd-ai/bookpress/overlay"
	"github.com/opd-ai/bookpress/paginate"
	"github.com/opd-ai/bookpress/pdfdoc"
	"github.com/opd-ai/bookpress/pipeline"
	"github.com/opd-ai/bookpress/render"
	"github.com/opd-ai/bookpress/util"
)

// app carries the global flags and the configuration they override.
type app struct {
	configPath string
	title      string
	author     string
	font       string
	start      int
	firstPage  string

	cfg     *config.Config
	logFile io.Closer
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "bookpress",
		Short: "Typeset chapters into a numbered book PDF",
		Long: `bookpress formats raw chapter text into HTML, prints it to PDF and stamps
running headers and page numbers onto every page, so the chapters of a book
can be laid out one at a time and still read as one continuous volume.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.loadConfig,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logFile != nil {
				a.logFile.Close()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default is ./bookpress.yaml or $HOME/bookpress.yaml)")
	flags.StringVar(&a.title, "title", "", "book title, drawn in recto headers")
	flags.StringVar(&a.author, "author", "", "author name, drawn in verso headers")
	flags.StringVar(&a.font, "font", "", "font family for headers and page numbers")
	flags.IntVar(&a.start, "start", 0, "page number of the first chapter page")
	flags.StringVar(&a.firstPage, "first-page", "", "side the first chapter page falls on: recto or verso")

	root.AddCommand(
		a.chapterCommand(),
		a.bookCommand(),
		a.overlayCommand(),
		a.stampCommand(),
		a.countCommand(),
		a.planCommand(),
		a.inspectCommand(),
		a.serveCommand(),
		a.mcpCommand(),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		printError(root.ErrOrStderr(), err)
		return 1
	}
	return 0
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err)
	var mismatch *pdfdoc.PageCountMismatchError
	if errors.As(err, &mismatch) {
		fmt.Fprintf(w, "  content pages: %d\n  overlay pages: %d\n", mismatch.Content, mismatch.Overlay)
	}
}

func (a *app) loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("title") {
		cfg.Book.Title = a.title
	}
	if flags.Changed("author") {
		cfg.Book.Author = a.author
	}
	if flags.Changed("font") {
		cfg.Book.Font = a.font
	}
	if flags.Changed("start") {
		cfg.Book.StartPage = a.start
	}
	if flags.Changed("first-page") {
		cfg.Book.FirstPage = a.firstPage
	}
	if cfg.Log.File != "" {
		if a.logFile, err = util.SetLogFile(cfg.Log.File); err != nil {
			return err
		}
	}
	a.cfg = cfg
	return nil
}

func (a *app) overlayGenerator() *overlay.Generator {
	var opts []overlay.Option
	if a.cfg.Book.FontFile != "" {
		opts = append(opts, overlay.WithFontFile(a.cfg.Book.Font, a.cfg.Book.FontFile))
	}
	return overlay.New(opts...)
}

// pipeline assembles the chapter pipeline from the configuration.
func (a *app) pipeline(ctx context.Context, progress io.Writer) (*pipeline.Pipeline, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	f, err := format.New(ctx, a.cfg.Formatter)
	if err != nil {
		return nil, err
	}
	r, layout, err := render.New(a.cfg.Render)
	if err != nil {
		return nil, err
	}
	return &pipeline.Pipeline{
		Formatter: f,
		Renderer:  r,
		Overlay:   a.overlayGenerator(),
		WorkDir:   a.cfg.Output.Dir,
		Style: format.Style{
			FontSizePx: a.cfg.Formatter.FontSize,
			LineHeight: a.cfg.Formatter.LineHeight,
		},
		Layout:   layout,
		Retries:  a.cfg.Formatter.Retries,
		Progress: progressWriter{w: progress},
	}, nil
}

func (a *app) context() (paginate.Context, error) {
	return a.cfg.Book.Context()
}

type progressWriter struct{ w io.Writer }

func (p progressWriter) UpdateOutput(message string) {
	fmt.Fprintln(p.w, message)
}

// signalContext is cancelled on interrupt or termination.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
