package session

import "sort"

// Overlay holds files created in-session that were never committed
// remotely, keyed by path. A node is "local" iff its path is a key here.
// State is in-memory only and lost when the application exits.
type Overlay struct {
	files map[string]string
}

func NewOverlay() *Overlay {
	return &Overlay{files: make(map[string]string)}
}

func (o *Overlay) Put(path, content string) {
	o.files[path] = content
}

func (o *Overlay) Get(path string) (string, bool) {
	content, ok := o.files[path]
	return content, ok
}

func (o *Overlay) Has(path string) bool {
	_, ok := o.files[path]
	return ok
}

func (o *Overlay) Delete(path string) {
	delete(o.files, path)
}

func (o *Overlay) Len() int { return len(o.files) }

// Paths returns all overlay paths in stable order.
func (o *Overlay) Paths() []string {
	paths := make([]string, 0, len(o.files))
	for p := range o.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Clear drops all overlay files (repository/branch switch, logout).
func (o *Overlay) Clear() {
	o.files = make(map[string]string)
}
