package assist

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

type fakeCompleter struct {
	gotPrompt string
	reply     string
	err       error
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.gotPrompt = prompt
	return f.reply, f.err
}

func TestAskEmbedsActiveFileAndQuestion(t *testing.T) {
	fake := &fakeCompleter{reply: "ok"}
	b := NewBridge(fake)

	_, err := b.Ask(context.Background(), Request{
		Question:    "why does main fail?",
		Active:      &File{Path: "src/main.js", Content: "function main() {}"},
		TreeListing: "└─ src/\n  └─ main.js",
	})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	for _, want := range []string{"src/main.js", "function main() {}", "why does main fail?", "FOLDER STRUCTURE"} {
		if !strings.Contains(fake.gotPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestPromptBoundsContextFiles(t *testing.T) {
	var others []File
	for i := 0; i < maxContextFiles+4; i++ {
		others = append(others, File{
			Path:    strings.Repeat("x", i+1) + ".js",
			Content: strings.Repeat("a", maxFileChars+500),
		})
	}
	prompt := buildPrompt(Request{Question: "q", Others: others})

	count := strings.Count(prompt, "### ")
	if count != maxContextFiles {
		t.Errorf("prompt includes %d other files, want %d", count, maxContextFiles)
	}
	// Each included file body must be truncated to the per-file budget.
	if strings.Contains(prompt, strings.Repeat("a", maxFileChars+1)) {
		t.Error("file content not truncated to budget")
	}
}

func TestPromptTruncationKeepsRuneBoundaries(t *testing.T) {
	// The multi-byte run starts one byte before the budget, so a naive byte
	// cut would split the first rune.
	content := strings.Repeat("a", maxFileChars-1) + strings.Repeat("界", 8)
	prompt := buildPrompt(Request{
		Question: "q",
		Others:   []File{{Path: "wide.txt", Content: content}},
	})
	if !utf8.ValidString(prompt) {
		t.Error("truncation split a multi-byte rune")
	}
	if got := truncate(content, maxFileChars); len(got) > maxFileChars {
		t.Errorf("truncate kept %d bytes, budget %d", len(got), maxFileChars)
	}
}

func TestMissingCredential(t *testing.T) {
	g := NewGemini("")
	_, err := g.Complete(context.Background(), "hi")
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestExtractCandidateFindsFunctionBlock(t *testing.T) {
	body := "function greet(name) {\n  return 'hello ' + name + '!';\n}\n\nfunction main() {\n  const who = 'world';\n  console.log(greet(who));\n}\n\nmain();"
	if len(body) < 120 {
		t.Fatalf("test block too short: %d", len(body))
	}
	reply := "Here is the fixed file:\n```javascript\n" + body + "\n```\nThat should work."

	p := ExtractCandidate(reply, "src/main.js", "old content")
	if p == nil {
		t.Fatal("expected a candidate")
	}
	if p.New != body {
		t.Errorf("candidate body = %q", p.New)
	}
	if p.State != Proposed {
		t.Errorf("state = %v, want Proposed", p.State)
	}
}

func TestExtractCandidateIgnoresShortAndAbsentBlocks(t *testing.T) {
	if p := ExtractCandidate("no fenced code here at all", "a.js", ""); p != nil {
		t.Error("reply without fences must yield no candidate")
	}
	short := "```js\nx = 1\n```"
	if p := ExtractCandidate(short, "a.js", ""); p != nil {
		t.Error("short inline snippet must not become a candidate")
	}
}

func TestProposalLifecycle(t *testing.T) {
	p := newProposal("a.js", "old\n", "new\n")
	if err := p.Accept(); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if p.State != Applied {
		t.Errorf("state = %v, want Applied", p.State)
	}
	if err := p.Reject(); !errors.Is(err, ErrProposalSettled) {
		t.Error("settled proposal must not transition again")
	}
}

func TestProposalDiff(t *testing.T) {
	p := newProposal("a.js", "line one\nline two\n", "line one\nline 2\n")
	diff := p.Diff()
	if !strings.Contains(diff, "-line two") || !strings.Contains(diff, "+line 2") {
		t.Errorf("unexpected diff:\n%s", diff)
	}
	if !strings.Contains(diff, "a.js (proposed)") {
		t.Error("diff header missing proposed label")
	}
}
