// Package mcptools exposes page counting, planning, overlay generation and
// stamping as MCP tools.
package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/opd-ai/bookpress/overlay"
	"github.com/opd-ai/bookpress/paginate"
	"github.com/opd-ai/bookpress/pdfdoc"
)

const (
	serverName    = "bookpress"
	serverVersion = "0.1.0"
)

// Argument keys shared by the schemas and the handlers.
const (
	argPath      = "path"
	argTitle     = "title"
	argAuthor    = "author"
	argFont      = "font"
	argStartPage = "start_page"
	argFirstPage = "first_page"
	argPages     = "pages"
	argOut       = "out"
	argContent   = "content"
	argOverlay   = "overlay"
)

type Tools struct {
	overlay *overlay.Generator
}

func New(gen *overlay.Generator) *Tools {
	if gen == nil {
		gen = overlay.New()
	}
	return &Tools{overlay: gen}
}

// NewServer returns an MCP server with every tool registered.
func NewServer(t *Tools) *server.MCPServer {
	s := server.NewMCPServer(serverName, serverVersion)
	t.Register(s)
	return s
}

// Serve runs the tools over stdio until the client disconnects.
func Serve(t *Tools) error {
	return server.ServeStdio(NewServer(t))
}

func contextOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString(argTitle, mcp.Description("Book title, drawn in recto headers")),
		mcp.WithString(argAuthor, mcp.Description("Author name, drawn in verso headers")),
		mcp.WithString(argFont, mcp.Description("Font family for headers and numbers (default Times)")),
		mcp.WithNumber(argStartPage, mcp.Description("Page number of the chapter's first page (default 1)")),
		mcp.WithString(argFirstPage, mcp.Description("Side the first page falls on: recto/right or verso/left")),
		mcp.WithNumber(argPages, mcp.Required(), mcp.Description("Number of pages in the chapter")),
	}
}

func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(
		mcp.NewTool("count_pages",
			mcp.WithDescription("Count the pages of a PDF file."),
			mcp.WithString(argPath, mcp.Required(), mcp.Description("Path of the PDF file")),
		),
		t.countPages,
	)

	s.AddTool(
		mcp.NewTool("plan_pages",
			append([]mcp.ToolOption{
				mcp.WithDescription("List the header, footer and page number decided for every page of a chapter."),
			}, contextOptions()...)...,
		),
		t.planPages,
	)

	s.AddTool(
		mcp.NewTool("generate_overlay",
			append(append([]mcp.ToolOption{
				mcp.WithDescription("Write an overlay PDF carrying only running headers and page numbers."),
			}, contextOptions()...),
				mcp.WithString(argOut, mcp.Required(), mcp.Description("Path to write the overlay PDF to")),
			)...,
		),
		t.generateOverlay,
	)

	s.AddTool(
		mcp.NewTool("stamp_pages",
			mcp.WithDescription("Stamp each overlay page onto the matching content page. Both PDFs must have the same page count."),
			mcp.WithString(argContent, mcp.Required(), mcp.Description("Path of the content PDF")),
			mcp.WithString(argOverlay, mcp.Required(), mcp.Description("Path of the overlay PDF")),
			mcp.WithString(argOut, mcp.Required(), mcp.Description("Path to write the stamped PDF to")),
		),
		t.stampPages,
	)
}

func (t *Tools) countPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, ok := stringArg(req, argPath)
	if !ok || path == "" {
		return mcp.NewToolResultError(argPath + " is required"), nil
	}
	n, err := pdfdoc.CountFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%d", n)), nil
}

func (t *Tools) planPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, pages, err := chapterArgs(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	decisions, err := paginate.Plan(ctx, c, pages)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var out strings.Builder
	for _, d := range decisions {
		fmt.Fprintf(&out, "page %d: %s, %s %s", d.PageNumber, d.Role, d.Band, d.NumberAnchor)
		if d.Header != "" {
			fmt.Fprintf(&out, ", header %q", d.Header)
		}
		out.WriteByte('\n')
	}
	return mcp.NewToolResultText(out.String()), nil
}

func (t *Tools) generateOverlay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, ok := stringArg(req, argOut)
	if !ok || out == "" {
		return mcp.NewToolResultError(argOut + " is required"), nil
	}
	c, pages, err := chapterArgs(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.overlay.GenerateFile(ctx, c, pages, out); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("wrote %d overlay pages numbered %d-%d to %s", pages, c.StartPage, c.StartPage+pages-1, out)), nil
}

func (t *Tools) stampPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var paths [3]string
	for i, key := range []string{argContent, argOverlay, argOut} {
		v, ok := stringArg(req, key)
		if !ok || v == "" {
			return mcp.NewToolResultError(key + " is required"), nil
		}
		paths[i] = v
	}
	if err := pdfdoc.MergeFile(paths[0], paths[1], paths[2]); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("wrote " + paths[2]), nil
}

func chapterArgs(req mcp.CallToolRequest) (paginate.Context, int, error) {
	title, _ := stringArg(req, argTitle)
	author, _ := stringArg(req, argAuthor)
	font, _ := stringArg(req, argFont)
	if font == "" {
		font = "Times"
	}
	first, _ := stringArg(req, argFirstPage)
	orientation, err := paginate.ParseOrientation(first)
	if err != nil {
		return paginate.Context{}, 0, err
	}
	start, ok := intArg(req, argStartPage)
	if !ok {
		start = 1
	}
	pages, ok := intArg(req, argPages)
	if !ok {
		return paginate.Context{}, 0, fmt.Errorf("%s is required", argPages)
	}
	c, err := paginate.NewContext(title, author, font, start, orientation)
	if err != nil {
		return paginate.Context{}, 0, err
	}
	return c, pages, nil
}

func stringArg(req mcp.CallToolRequest, key string) (string, bool) {
	v, ok := req.Params.Arguments[key].(string)
	return v, ok
}

// intArg accepts JSON numbers, which arrive as float64, and plain ints.
func intArg(req mcp.CallToolRequest, key string) (int, bool) {
	switch v := req.Params.Arguments[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}
