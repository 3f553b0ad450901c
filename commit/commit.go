// Package commit finds review request references in commit messages, groups
// commits by the review request they reference, and decides whether a batch
// of commits may be accepted.
package commit

type Kind int

const (
	_ Kind = iota

	KindApproved
	KindNotApproved
	KindQueryFailed
	KindMissingReference
	// KindUnreferenced marks commits without a reference when none is
	// required. It is never a finding.
	KindUnreferenced
)

func (k Kind) String() string {
	switch k {
	case KindApproved:
		return "approved"
	case KindNotApproved:
		return "not approved"
	case KindQueryFailed:
		return "unchecked"
	case KindMissingReference:
		return "missing review request"
	case KindUnreferenced:
		return "unreferenced"
	case 0:
		return "<INVALID>"
	default:
		return "<UNKNOWN>"
	}
}
