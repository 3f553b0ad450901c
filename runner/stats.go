package runner

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeffrom/rbgate/commit"
)

// Stats counts the commits of a verdict by outcome and by review request.
type Stats struct {
	Commits int64
	Counts  map[string][]*statCount
}

func (s *Stats) Add(bucket, name string, n int64) {
	counts := s.Counts[bucket]
	count, found := s.findCount(name, counts)
	if !found {
		counts = append(counts, count)
	}
	count.Add(n)

	s.Counts[bucket] = counts
}

func (s *Stats) findCount(name string, counts []*statCount) (*statCount, bool) {
	for _, c := range counts {
		if c.label == name {
			return c, true
		}
	}
	return &statCount{label: name}, false
}

func (s *Stats) sortedBuckets() []string {
	buckets := make([]string, 0, len(s.Counts))
	for name := range s.Counts {
		buckets = append(buckets, name)
	}
	sort.Strings(buckets)
	return buckets
}

// Count returns the count for name in bucket.
func (s *Stats) Count(bucket, name string) int64 {
	for _, c := range s.Counts[bucket] {
		if c.label == name {
			return c.n
		}
	}
	return 0
}

type statCount struct {
	label string
	n     int64
}

func (c *statCount) Add(n int64) {
	c.n += n
}

func (s *Stats) TextSummary(w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(fmt.Sprintf("%d commits\n\n", s.Commits))

	for _, name := range s.sortedBuckets() {
		counts := s.Counts[name]
		sort.SliceStable(counts, func(i, j int) bool {
			return counts[i].n > counts[j].n
		})
		bw.WriteString(fmt.Sprintf("%s:\n", toTitle(name)))
		for _, count := range counts {
			label := count.label
			if label == "" {
				label = "n/a"
			}
			bw.WriteString(fmt.Sprintf("  %24s\t\t%d\n", label, count.n))
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// Stats summarizes v.
func (r *Runner) Stats(v *commit.Verdict) *Stats {
	stats := &Stats{Counts: make(map[string][]*statCount)}
	if v == nil {
		return stats
	}

	add := func(f commit.Finding) {
		n := int64(len(f.Commits))
		stats.Commits += n
		stats.Add("outcome", f.Kind.String(), n)
		stats.Add("review_request", f.ReviewRequest, n)
	}
	for _, f := range v.Approved {
		add(f)
	}
	counted := false
	for _, f := range v.Findings {
		add(f)
		counted = counted || f.Kind == commit.KindMissingReference
	}
	if !counted && len(v.Unreferenced) > 0 {
		add(commit.Finding{Kind: commit.KindUnreferenced, Commits: v.Unreferenced})
	}
	return stats
}

var nonAlphaRE = regexp.MustCompile(`[^A-Za-z]`)

func toTitle(s string) string {
	s = nonAlphaRE.ReplaceAllLiteralString(s, " ")
	return cases.Title(language.English).String(s)
}
