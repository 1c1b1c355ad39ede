package features

// Verdict is the classification of one feature within a single chunk
type Verdict struct {
	Present      bool   `json:"present"`
	Details      string `json:"details"`
	Improvements string `json:"improvements"`
}

// Map holds the per-chunk verdicts, keyed by feature
type Map map[Name]Verdict

// NewMap returns a Map seeded with an absent verdict for every catalog feature
func NewMap() Map {
	m := make(Map, len(registry))
	for _, e := range registry {
		m[e.Name] = Verdict{}
	}
	return m
}

// Clone returns a copy of m
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Finding is the repository-level verdict for one feature
type Finding struct {
	Present bool `json:"present"`

	// Details is the newline-joined evidence, or NotFound when there is none
	Details string `json:"details"`

	// Evidence holds the deduplicated evidence strings in first-seen order
	Evidence []string `json:"evidence,omitempty"`

	Improvements []string `json:"improvements,omitempty"`
}

// RepositoryMap is the final feature verdict of a repository. It always covers
// the whole catalog.
type RepositoryMap map[Name]Finding

// EmptyRepositoryMap returns a RepositoryMap with every feature absent
func EmptyRepositoryMap() RepositoryMap {
	m := make(RepositoryMap, len(registry))
	for _, e := range registry {
		m[e.Name] = Finding{Details: NotFound}
	}
	return m
}

// PresentCount returns the number of features marked present
func (m RepositoryMap) PresentCount() int {
	n := 0
	for _, f := range m {
		if f.Present {
			n++
		}
	}
	return n
}
