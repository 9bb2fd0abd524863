package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/opd-ai/bookpress/paginate"
	"github.com/opd-ai/bookpress/pdfdoc"
)

func (a *app) overlayCommand() *cobra.Command {
	var (
		pages  int
		out    string
		like   string
		width  float64
		height float64
	)
	cmd := &cobra.Command{
		Use:   "overlay",
		Short: "Generate only the header and page number overlay for a chapter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.context()
			if err != nil {
				return err
			}
			if like != "" {
				if width, height, err = pdfdoc.PageSize(like); err != nil {
					return err
				}
				if pages == 0 {
					if pages, err = pdfdoc.CountFile(like); err != nil {
						return err
					}
				}
			}
			gen := a.overlayGenerator()
			if width > 0 && height > 0 {
				gen = gen.Sized(width, height)
			}
			if err := gen.GenerateFile(context.Background(), c, pages, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "overlay %s: %d pages numbered %d-%d\n", out, pages, c.StartPage, c.StartPage+pages-1)
			return nil
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 0, "number of pages")
	cmd.Flags().StringVar(&out, "out", "overlay.pdf", "overlay PDF to write")
	cmd.Flags().StringVar(&like, "like", "", "content PDF to take the page size (and page count) from")
	cmd.Flags().Float64Var(&width, "width", 0, "page width in points")
	cmd.Flags().Float64Var(&height, "height", 0, "page height in points")
	return cmd
}

func (a *app) stampCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stamp <content.pdf> <overlay.pdf> <out.pdf>",
		Short: "Stamp overlay pages onto content pages one for one",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pdfdoc.MergeFile(args[0], args[1], args[2]); err != nil {
				return err
			}
			n, err := pdfdoc.CountFile(args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d pages\n", args[2], n)
			return nil
		},
	}
}

func (a *app) countCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count <file.pdf>",
		Short: "Print the page count of a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := pdfdoc.CountFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func (a *app) planCommand() *cobra.Command {
	var pages int
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the header, footer and page number decided for every page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.context()
			if err != nil {
				return err
			}
			decisions, err := paginate.Plan(context.Background(), c, pages)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PAGE\tROLE\tBAND\tANCHOR\tHEADER")
			for _, d := range decisions {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.NumberText, d.Role, d.Band, d.NumberAnchor, d.Header)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 0, "number of pages in the chapter")
	return cmd
}

func (a *app) inspectCommand() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "inspect <file.pdf>",
		Short: "Print the text layer of each page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if page > 0 {
				text, err := pdfdoc.PageText(args[0], page)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "--- page %d ---\n%s\n", page, strings.TrimSpace(text))
				return nil
			}
			if page < 0 {
				return errors.New("page must be positive")
			}
			pages, err := pdfdoc.TextLayer(args[0])
			if err != nil {
				return err
			}
			for i, text := range pages {
				fmt.Fprintf(w, "--- page %d ---\n%s\n", i+1, strings.TrimSpace(text))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "print only this page")
	return cmd
}
