package format

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/russross/blackfriday/v2"
)

const bookStylesheet = `body { font-family: Georgia, "Times New Roman", serif; font-size: %s; line-height: %s; margin: 0; }
p { text-indent: 1em; margin: 0.1em 0 0.2em 0; text-align: justify; }
h1 { text-align: center; margin-top: 25vh; margin-bottom: 2em; }
h2, h3 { text-align: center; }
blockquote { font-style: italic; margin-left: 2em; }
`

// MarkdownFormatter formats chapters offline by converting markdown to HTML.
// Plain prose is valid markdown, so unmarked chapters come out as paragraphs.
type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (MarkdownFormatter) Format(ctx context.Context, chapter string, style Style) (string, error) {
	if err := style.validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(chapter) == "" {
		return "", &FormattingServiceError{Provider: "markdown", Err: errors.New("empty chapter")}
	}

	body := blackfriday.Run([]byte(chapter),
		blackfriday.WithExtensions(blackfriday.CommonExtensions|blackfriday.AutoHeadingIDs))

	title := Title(string(body))
	var doc strings.Builder
	doc.WriteString(doctype + "\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	if title != "" {
		fmt.Fprintf(&doc, "<title>%s</title>\n", html.EscapeString(title))
	}
	doc.WriteString("<style>\n")
	fmt.Fprintf(&doc, bookStylesheet, strconv.Itoa(style.FontSizePx)+"px", style.LineHeight)
	doc.WriteString("</style>\n</head>\n<body>\n")
	doc.Write(body)
	doc.WriteString("</body>\n</html>\n")
	return doc.String(), nil
}
