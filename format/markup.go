package format

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

const doctype = "<!DOCTYPE html>"

// CleanMarkup strips code fences and any chatter around the HTML document a
// model returned, and checks that what remains is an HTML document with
// visible body text.
func CleanMarkup(response string) (string, error) {
	s := strings.TrimSpace(response)
	s = strings.TrimPrefix(s, "```html")
	s = strings.TrimPrefix(s, "```HTML")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	lower := strings.ToLower(s)
	if i := strings.Index(lower, "<!doctype"); i > 0 {
		s, lower = s[i:], lower[i:]
	} else if i < 0 {
		j := strings.Index(lower, "<html")
		if j < 0 {
			return "", errors.New("response is not an HTML document")
		}
		s, lower = s[j:], lower[j:]
	}
	if end := strings.LastIndex(lower, "</html>"); end >= 0 {
		s = s[:end+len("</html>")]
	}
	if s == "" {
		return "", errors.New("empty response")
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return "", fmt.Errorf("parsing markup: %w", err)
	}
	body := findElement(doc, "body")
	if body == nil || strings.TrimSpace(textContent(body)) == "" {
		return "", errors.New("markup has no body text")
	}

	if !strings.HasPrefix(strings.ToLower(s), "<!doctype") {
		s = doctype + "\n" + s
	}
	return s, nil
}

// Title returns the first <h1> of markup, falling back to <title>.
func Title(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	for _, tag := range []string{"h1", "title"} {
		if n := findElement(doc, tag); n != nil {
			if t := strings.Join(strings.Fields(textContent(n)), " "); t != "" {
				return t
			}
		}
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return text.String()
}
