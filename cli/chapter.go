package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opd-ai/bookpress/pipeline"
)

func (a *app) bookPath(flag string) string {
	if flag != "" {
		return flag
	}
	if filepath.IsAbs(a.cfg.Output.Book) {
		return a.cfg.Output.Book
	}
	return filepath.Join(a.cfg.Output.Dir, a.cfg.Output.Book)
}

func (a *app) chapterCommand() *cobra.Command {
	var book string
	cmd := &cobra.Command{
		Use:   "chapter <file>",
		Short: "Lay out one chapter and append it to the book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			c, err := a.context()
			if err != nil {
				return err
			}
			p, err := a.pipeline(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ch, err := pipeline.ReadChapter(args[0])
			if err != nil {
				return err
			}

			b := pipeline.NewBook(p, a.bookPath(book), c)
			res, err := b.AddChapter(ctx, ch)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			fmt.Fprintf(cmd.OutOrStdout(), "book %s: %d pages\n", b.Path(), b.Pages())
			return nil
		},
	}
	cmd.Flags().StringVar(&book, "book", "", "book PDF to append to (default output.dir/output.book)")
	return cmd
}

func (a *app) bookCommand() *cobra.Command {
	var book string
	cmd := &cobra.Command{
		Use:   "book <dir>",
		Short: "Lay out every chapter file in a directory, in order, into one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			c, err := a.context()
			if err != nil {
				return err
			}
			p, err := a.pipeline(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			paths, err := pipeline.DiscoverChapters(args[0])
			if err != nil {
				return err
			}

			// The book is rebuilt from its first chapter.
			path := a.bookPath(book)
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("removing old book: %w", err)
			}
			b := pipeline.NewBook(p, path, c)
			results, err := b.CompileFiles(ctx, paths)
			for _, res := range results {
				printResult(cmd.OutOrStdout(), res)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "book %s: %d chapters, %d pages\n", b.Path(), len(results), b.Pages())
			return nil
		},
	}
	cmd.Flags().StringVar(&book, "book", "", "book PDF to write (default output.dir/output.book)")
	return cmd
}

func printResult(w io.Writer, res *pipeline.Result) {
	fmt.Fprintf(w, "chapter %s: pages %d-%d (%d pages) -> %s; next chapter starts on page %d (%s)\n",
		res.Name, res.StartPage, res.StartPage+res.Pages-1, res.Pages, res.OutputPath,
		res.Next.StartPage, res.Next.FirstPage)
}
