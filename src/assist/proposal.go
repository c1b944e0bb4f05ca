package assist

import (
	"errors"

	"github.com/pmezard/go-difflib/difflib"
)

var ErrProposalSettled = errors.New("proposal already settled")

type ProposalState int

const (
	Proposed ProposalState = iota
	Applied
	Rejected
)

func (s ProposalState) String() string {
	switch s {
	case Applied:
		return "applied"
	case Rejected:
		return "rejected"
	default:
		return "proposed"
	}
}

// Proposal is an extracted replacement candidate awaiting the user's
// decision. Applying means a full overwrite of the current file, not a
// merge; Old is kept so the decision screen can show a diff.
type Proposal struct {
	Path  string
	Old   string
	New   string
	State ProposalState
}

func newProposal(path, old, new string) *Proposal {
	return &Proposal{Path: path, Old: old, New: new, State: Proposed}
}

// Accept marks the proposal applied. The caller performs the overwrite.
func (p *Proposal) Accept() error {
	if p.State != Proposed {
		return ErrProposalSettled
	}
	p.State = Applied
	return nil
}

func (p *Proposal) Reject() error {
	if p.State != Proposed {
		return ErrProposalSettled
	}
	p.State = Rejected
	return nil
}

// Diff renders a unified diff between current and proposed content.
func (p *Proposal) Diff() string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(p.Old),
		B:        difflib.SplitLines(p.New),
		FromFile: p.Path + " (current)",
		ToFile:   p.Path + " (proposed)",
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return text
}
