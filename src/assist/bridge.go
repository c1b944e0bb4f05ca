// Package assist formats the edit session and a bounded slice of other
// files into a single prompt, sends it to a hosted completion endpoint, and
// scans the reply for a fenced code block worth offering as a replacement
// for the current file. Extraction is best-effort and a candidate is never
// applied without the caller's explicit confirmation.
package assist

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// Bounds keep the prompt inside request-size limits.
	maxContextFiles = 6
	maxFileChars    = 4000
)

const preamble = "You are a coding assistant embedded in a repository editor. " +
	"The user is working on the ACTIVE FILE below; OTHER FILES and the folder structure are context. " +
	"Answer the question directly. When you rewrite the active file, return the complete file " +
	"in a single fenced code block with the correct language tag; no placeholders or snippets."

// File is one path/content pair offered as prompt context.
type File struct {
	Path    string
	Content string
}

// Request carries everything the bridge embeds into one prompt.
type Request struct {
	Question    string
	Active      *File
	Others      []File
	TreeListing string
}

type Bridge struct {
	completer Completer
}

func NewBridge(c Completer) *Bridge {
	return &Bridge{completer: c}
}

// Ask sends one prompt and returns the raw reply text. Error taxonomy is
// the completer's (see errors.go); no retries.
func (b *Bridge) Ask(ctx context.Context, req Request) (string, error) {
	return b.completer.Complete(ctx, buildPrompt(req))
}

func buildPrompt(req Request) string {
	var p strings.Builder
	p.WriteString(preamble)
	p.WriteString("\n\n")

	if req.Active != nil {
		p.WriteString("## ACTIVE FILE: ")
		p.WriteString(req.Active.Path)
		p.WriteString("\n")
		writeFenced(&p, req.Active.Path, req.Active.Content)
	}

	if req.TreeListing != "" {
		p.WriteString("## FOLDER STRUCTURE\n```\n")
		p.WriteString(req.TreeListing)
		p.WriteString("\n```\n\n")
	}

	included := 0
	for _, f := range req.Others {
		if included >= maxContextFiles {
			break
		}
		if req.Active != nil && f.Path == req.Active.Path {
			continue
		}
		content := truncate(f.Content, maxFileChars)
		p.WriteString("### ")
		p.WriteString(f.Path)
		p.WriteString("\n")
		writeFenced(&p, f.Path, content)
		included++
	}

	p.WriteString("## QUESTION\n")
	p.WriteString(req.Question)
	p.WriteString("\n")
	return p.String()
}

// truncate cuts s to at most n bytes without splitting a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func writeFenced(p *strings.Builder, path, content string) {
	fmt.Fprintf(p, "```%s\n%s\n```\n\n", fenceLang(path), content)
}

func fenceLang(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return ""
	}
	switch strings.ToLower(path[idx+1:]) {
	case "js", "jsx":
		return "javascript"
	case "ts", "tsx":
		return "ts"
	case "html":
		return "html"
	case "css":
		return "css"
	case "json":
		return "json"
	case "md":
		return "md"
	case "go":
		return "go"
	case "py":
		return "python"
	case "rs":
		return "rust"
	case "yaml", "yml":
		return "yaml"
	case "sh":
		return "bash"
	default:
		return ""
	}
}
