package export

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/glabrego/copilotlog/internal/chat"
)

var reUnsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type Options struct {
	Theme     chat.Theme
	Generator string
	Now       func() time.Time
}

func DefaultOptions() Options {
	return Options{Theme: chat.ThemeLight, Generator: "copilotlog", Now: time.Now}
}

// HTML renders c as a standalone page. The chat body is sanitised.
func HTML(c chat.Chat, opts Options) ([]byte, error) {
	if c.ID == "" {
		return nil, errors.New("chat has no id")
	}
	if !opts.Theme.Valid() {
		opts.Theme = chat.ThemeLight
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Generator == "" {
		opts.Generator = "copilotlog"
	}

	body := bluemonday.UGCPolicy().Sanitize(c.HTML)
	title := html.EscapeString(strings.TrimSpace(c.Title))
	if title == "" {
		title = "Untitled chat"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\"")
	if opts.Theme == chat.ThemeDark {
		sb.WriteString(" class=\"dark\"")
	}
	sb.WriteString(">\n<head>\n")
	sb.WriteString("  <meta charset=\"UTF-8\">\n")
	sb.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("  <title>%s</title>\n", title))
	sb.WriteString(fmt.Sprintf("  <meta name=\"generator\" content=\"%s\">\n", html.EscapeString(opts.Generator)))
	sb.WriteString(css)
	sb.WriteString("</head>\n<body>\n")
	sb.WriteString("  <main class=\"chat\">\n")
	sb.WriteString(fmt.Sprintf("    <h1>%s</h1>\n", title))
	if created := c.Created(); !created.IsZero() {
		sb.WriteString(fmt.Sprintf("    <p class=\"meta\">Imported <time datetime=\"%s\">%s</time></p>\n",
			html.EscapeString(c.CreatedAt), created.UTC().Format("January 2, 2006 at 15:04 UTC")))
	}
	sb.WriteString("    <section class=\"body\">\n")
	sb.WriteString(body)
	sb.WriteString("\n    </section>\n  </main>\n")
	sb.WriteString(fmt.Sprintf("  <footer>Exported with %s on %s</footer>\n",
		html.EscapeString(opts.Generator), opts.Now().UTC().Format(time.DateOnly)))
	sb.WriteString("</body>\n</html>\n")
	return []byte(sb.String()), nil
}

// FileName returns a filesystem-safe name for the exported page.
func FileName(c chat.Chat) string {
	base := strings.Trim(reUnsafeFileChars.ReplaceAllString(strings.TrimSpace(c.Title), "-"), "-.")
	if base == "" {
		base = "chat"
	}
	short := c.ID
	if len(short) > 8 {
		short = short[:8]
	}
	if short == "" {
		return base + ".html"
	}
	return base + "-" + short + ".html"
}

const css = `  <style>
    :root { --bg: #eff1f5; --fg: #4c4f69; --muted: #6c6f85; --surface: #e6e9ef; }
    html.dark { --bg: #1e1e2e; --fg: #cdd6f4; --muted: #a6adc8; --surface: #313244; }
    body { margin: 0; background: var(--bg); color: var(--fg); font-family: system-ui, sans-serif; }
    main.chat { max-width: 860px; margin: 0 auto; padding: 2rem 1rem; }
    .meta, footer { color: var(--muted); font-size: 0.875rem; }
    footer { text-align: center; padding: 1rem; }
    pre { background: var(--surface); padding: 1rem; border-radius: 6px; overflow-x: auto; }
  </style>
`
