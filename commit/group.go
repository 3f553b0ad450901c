package commit

import "github.com/jeffrom/rbgate/model"

// NoReference is the group key of commits that reference no review request.
const NoReference = ""

// Groups partitions a batch of commits by referenced review request. Keys
// keep the order they were first seen in, and commits keep input order
// within a group. Groups is not modified after Group returns it.
type Groups struct {
	keys   []string
	groups map[string][]*model.Commit
	n      int
}

// Group runs ex over every commit and partitions them by review request.
func Group(commits []*model.Commit, ex *Extractor) *Groups {
	g := &Groups{groups: make(map[string][]*model.Commit)}
	for _, c := range commits {
		key := NoReference
		if id, ok := ex.Extract(c.Message()); ok {
			key = id
		}
		if _, seen := g.groups[key]; !seen {
			g.keys = append(g.keys, key)
		}
		g.groups[key] = append(g.groups[key], c)
		g.n++
	}
	return g
}

// Keys returns every group key, NoReference included, in first-seen order.
func (g *Groups) Keys() []string {
	keys := make([]string, len(g.keys))
	copy(keys, g.keys)
	return keys
}

// IDs returns the referenced review request ids in first-seen order.
func (g *Groups) IDs() []string {
	ids := make([]string, 0, len(g.keys))
	for _, k := range g.keys {
		if k != NoReference {
			ids = append(ids, k)
		}
	}
	return ids
}

func (g *Groups) Commits(key string) []*model.Commit {
	return g.groups[key]
}

// Unreferenced returns the commits that reference no review request.
func (g *Groups) Unreferenced() []*model.Commit {
	return g.groups[NoReference]
}

// Len returns the number of commits across all groups.
func (g *Groups) Len() int {
	return g.n
}

func commitIDs(commits []*model.Commit) []string {
	ids := make([]string, len(commits))
	for i, c := range commits {
		ids[i] = c.ID
	}
	return ids
}
