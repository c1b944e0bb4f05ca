package forge

import "time"

// RepoRef identifies a remote repository. Immutable once selected.
type RepoRef struct {
	Owner string
	Name  string
}

func (r RepoRef) String() string { return r.Owner + "/" + r.Name }

// User is the authenticated identity behind the token.
type User struct {
	Login string `json:"login"`
	Name  string `json:"name"`
}

// Repo is one repository the user can browse.
type Repo struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	DefaultBranch string `json:"default_branch"`
	Private       bool   `json:"private"`
	Owner         struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// Ref returns the RepoRef for this repository.
func (r Repo) Ref() RepoRef { return RepoRef{Owner: r.Owner.Login, Name: r.Name} }

// Branch pairs a branch name with its head commit.
type Branch struct {
	Name string `json:"name"`
	SHA  string `json:"-"`
}

// Entry describes one item of a directory listing. Type is "file" or "dir".
// SHA is the revision token required to overwrite the entry safely.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
	Size int64  `json:"size"`
}

// Commit is a read-only commit record from the branch history.
type Commit struct {
	SHA     string
	Message string
	Author  string
	Date    time.Time
}
