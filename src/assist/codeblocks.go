package assist

import (
	"regexp"
	"strings"
)

// minCandidateLen filters out inline snippets; only a block that plausibly
// is a whole file gets offered as a replacement.
const minCandidateLen = 120

var fenceRe = regexp.MustCompile("(?s)```([a-zA-Z0-9_+\\.-]*)\\s*\\n(.*?)\\n```")

type codeBlock struct {
	lang string
	body string
}

func extractCodeBlocks(s string) []codeBlock {
	var out []codeBlock
	for _, m := range fenceRe.FindAllStringSubmatch(s, -1) {
		out = append(out, codeBlock{lang: strings.ToLower(m[1]), body: m[2]})
	}
	return out
}

// ExtractCandidate scans a reply for the first fenced block that looks like
// a complete source unit and returns it as a replacement candidate for
// path. This is a heuristic; the result must go through the Proposal
// confirmation step, never straight into the session.
func ExtractCandidate(reply, path, current string) *Proposal {
	for _, b := range extractCodeBlocks(reply) {
		if len(b.body) < minCandidateLen {
			continue
		}
		if !looksLikeSource(b.body) {
			continue
		}
		return newProposal(path, current, b.body)
	}
	return nil
}

// looksLikeSource accepts bodies that contain a recognizable top-level
// construct or span several lines.
func looksLikeSource(body string) bool {
	markers := []string{
		"function", "func ", "class ", "def ", "import ", "export ",
		"package ", "const ", "<!DOCTYPE", "<html", "=>",
	}
	for _, m := range markers {
		if strings.Contains(body, m) {
			return true
		}
	}
	return strings.Count(body, "\n") >= 3
}
