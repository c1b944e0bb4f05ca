// Package session tracks the currently selected file: its loaded content,
// the snapshot of the last durably saved content, and the derived dirty
// flag. Remote loads and saves are asynchronous at the caller; the session
// hands out sequence numbers so a superseded fetch can never clobber a more
// recent selection (last-select-wins).
package session

import (
	"errors"
	"fmt"
)

var (
	ErrNoSelection   = errors.New("no file selected")
	ErrNotLocal      = errors.New("selected file is not a local overlay file")
	ErrRemoteFile    = errors.New("selected file is remote")
	ErrAlreadyExists = errors.New("path already exists")
)

type Session struct {
	overlay *Overlay

	path    string
	local   bool
	sha     string
	current string
	saved   string
	loaded  bool

	// seq invalidates in-flight remote loads when the selection moves on.
	seq int
}

func New(overlay *Overlay) *Session {
	return &Session{overlay: overlay}
}

func (s *Session) Active() bool   { return s.loaded }
func (s *Session) Path() string   { return s.path }
func (s *Session) IsLocal() bool  { return s.local }
func (s *Session) SHA() string    { return s.sha }
func (s *Session) Content() string { return s.current }
func (s *Session) Saved() string  { return s.saved }

// Dirty reports whether current content differs from the last durably
// stored value.
func (s *Session) Dirty() bool {
	return s.loaded && s.current != s.saved
}

// SelectLocal loads an overlay file synchronously (no network).
func (s *Session) SelectLocal(path string) error {
	content, ok := s.overlay.Get(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotLocal, path)
	}
	s.seq++
	s.path = path
	s.local = true
	s.sha = ""
	s.current = content
	s.saved = content
	s.loaded = true
	return nil
}

// BeginSelect starts a remote load and returns the sequence number the
// caller must present to ApplyLoad. The previous selection stays intact
// until the load resolves.
func (s *Session) BeginSelect() int {
	s.seq++
	return s.seq
}

// ApplyLoad installs a resolved remote fetch. It reports false, leaving
// state untouched, when a newer selection has superseded the fetch.
func (s *Session) ApplyLoad(seq int, path, content, sha string) bool {
	if seq != s.seq {
		return false
	}
	s.path = path
	s.local = false
	s.sha = sha
	s.current = content
	s.saved = content
	s.loaded = true
	return true
}

// Stale reports whether seq no longer identifies the latest selection.
func (s *Session) Stale(seq int) bool { return seq != s.seq }

// Edit replaces current content; dirty is recomputed on read.
func (s *Session) Edit(text string) error {
	if !s.loaded {
		return ErrNoSelection
	}
	s.current = text
	return nil
}

// SaveLocal writes current content into the overlay. Always succeeds for
// local selections; no I/O is involved.
func (s *Session) SaveLocal() error {
	if !s.loaded {
		return ErrNoSelection
	}
	if !s.local {
		return ErrRemoteFile
	}
	s.overlay.Put(s.path, s.current)
	s.saved = s.current
	return nil
}

// BeginSave snapshots what a remote save will write, plus the sequence
// number guarding the current selection. The caller performs the update
// call with this exact content and token, then either ApplySave on success
// or nothing on failure, which leaves the session dirty and otherwise
// untouched.
func (s *Session) BeginSave() (path, content, sha string, seq int, err error) {
	if !s.loaded {
		return "", "", "", 0, ErrNoSelection
	}
	if s.local {
		return "", "", "", 0, ErrNotLocal
	}
	return s.path, s.current, s.sha, s.seq, nil
}

// ApplySave records a successful remote save: savedContent becomes the
// written snapshot and the node's revision token advances to the one the
// server returned, which the next save must present. It reports false,
// leaving state untouched, when the selection has moved on since BeginSave.
func (s *Session) ApplySave(seq int, content, newSHA string) bool {
	if seq != s.seq {
		return false
	}
	s.saved = content
	s.sha = newSHA
	return true
}

// CreateFile seeds the overlay with an extension-appropriate template and
// selects the new file. savedContent starts empty, so a fresh file reports
// dirty until its first save.
func (s *Session) CreateFile(path string) error {
	if s.overlay.Has(path) {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, path)
	}
	tmpl := Template(path)
	s.overlay.Put(path, tmpl)
	s.seq++
	s.path = path
	s.local = true
	s.sha = ""
	s.current = tmpl
	s.saved = ""
	s.loaded = true
	return nil
}

// Clear drops the selection on repository/branch switch.
func (s *Session) Clear() {
	s.seq++
	s.path = ""
	s.local = false
	s.sha = ""
	s.current = ""
	s.saved = ""
	s.loaded = false
}
