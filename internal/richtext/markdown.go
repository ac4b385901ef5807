// Package richtext converts Markdown written by callers into the sanitized
// HTML that Fizzy stores for card descriptions and comments.
package richtext

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	mdhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer converts Markdown to safe HTML.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New returns a Renderer with GitHub-flavoured Markdown enabled.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Strikethrough),
			goldmark.WithRendererOptions(mdhtml.WithHardWraps(), mdhtml.WithUnsafe()),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// ToHTML renders markdown as sanitized HTML. Blank input yields "".
func (r *Renderer) ToHTML(markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}

	return strings.TrimSpace(string(r.policy.SanitizeBytes(buf.Bytes()))), nil
}
