// Package taskid parses, formats and orders dotted-decimal task identifiers.
//
// An ID such as "3.2.1" is a path of positive integers; the number of segments
// is the depth of the task (1 for roots) and every prefix names an ancestor.
// The ordering defined by Compare is the pre-order of the hierarchy.
package taskid

import (
	"strconv"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Separator joins the segments of an ID.
const Separator = "."

// ID is an immutable, non-empty sequence of positive integers.
// Methods never modify the receiver; derived IDs are fresh copies.
type ID []int

// Parse converts text into an ID. Every segment must be a positive base-10
// integer without leading zeros.
func Parse(text string) (ID, error) {
	if text == "" {
		return nil, &domain.TreeError{Kind: domain.ErrInvalidID, ID: text, Msg: "empty id"}
	}
	parts := strings.Split(text, Separator)
	id := make(ID, len(parts))
	for i, part := range parts {
		n, err := parseSegment(part)
		if err != nil {
			return nil, &domain.TreeError{Kind: domain.ErrInvalidID, ID: text, Msg: err.Error()}
		}
		id[i] = n
	}
	return id, nil
}

func parseSegment(part string) (int, error) {
	if part == "" {
		return 0, errEmptySegment
	}
	for _, r := range part {
		if r < '0' || r > '9' {
			return 0, errNonNumeric
		}
	}
	if part[0] == '0' {
		if len(part) == 1 {
			return 0, errZeroSegment
		}
		return 0, errLeadingZero
	}
	n, err := strconv.Atoi(part)
	if err != nil {
		return 0, errOverflow
	}
	return n, nil
}

type segmentError string

func (e segmentError) Error() string { return string(e) }

const (
	errEmptySegment = segmentError("empty segment")
	errNonNumeric   = segmentError("segment is not a positive integer")
	errZeroSegment  = segmentError("segment must be greater than zero")
	errLeadingZero  = segmentError("segment has a leading zero")
	errOverflow     = segmentError("segment out of range")
)

// MustParse is like Parse but panics on malformed input. Intended for tests and constants.
func MustParse(text string) ID {
	id, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return id
}

// Valid reports whether text is a well-formed ID.
func Valid(text string) bool {
	_, err := Parse(text)
	return err == nil
}

// Root returns the root-level ID with the given position.
func Root(n int) ID {
	return ID{n}
}

// String renders the canonical dotted form. Format(Parse(x)) == x for every valid x.
func (id ID) String() string {
	var sb strings.Builder
	for i, n := range id {
		if i > 0 {
			sb.WriteString(Separator)
		}
		sb.WriteString(strconv.Itoa(n))
	}
	return sb.String()
}

// Format is the inverse of Parse.
func Format(id ID) string {
	return id.String()
}

// Depth is the number of segments (1 for roots).
func (id ID) Depth() int {
	return len(id)
}

// Last returns the trailing segment, i.e. the position among siblings.
func (id ID) Last() int {
	if len(id) == 0 {
		return 0
	}
	return id[len(id)-1]
}

// Parent returns the ID with the trailing segment removed, and false for roots.
func (id ID) Parent() (ID, bool) {
	if len(id) <= 1 {
		return nil, false
	}
	return id.clone()[:len(id)-1], true
}

// Child appends position n to a copy of id. A nil receiver yields a root ID.
func (id ID) Child(n int) ID {
	out := make(ID, len(id)+1)
	copy(out, id)
	out[len(id)] = n
	return out
}

// WithLast returns a copy of id whose trailing segment is n.
func (id ID) WithLast(n int) ID {
	out := id.clone()
	if len(out) > 0 {
		out[len(out)-1] = n
	}
	return out
}

// HasPrefix reports whether prefix is id itself or one of its ancestors.
func (id ID) HasPrefix(prefix ID) bool {
	if len(prefix) > len(id) {
		return false
	}
	for i, n := range prefix {
		if id[i] != n {
			return false
		}
	}
	return true
}

// Rebase replaces the leading len(oldPrefix) segments of id with newPrefix,
// keeping the suffix unchanged. It returns false if id does not start with oldPrefix.
func (id ID) Rebase(oldPrefix, newPrefix ID) (ID, bool) {
	if !id.HasPrefix(oldPrefix) {
		return nil, false
	}
	suffix := id[len(oldPrefix):]
	out := make(ID, 0, len(newPrefix)+len(suffix))
	out = append(out, newPrefix...)
	out = append(out, suffix...)
	return out, true
}

// Equal reports whether both IDs have the same segments.
func (id ID) Equal(other ID) bool {
	return Compare(id, other) == 0
}

func (id ID) clone() ID {
	out := make(ID, len(id))
	copy(out, id)
	return out
}

// Compare orders IDs element-wise; on a tie the shorter ID sorts first, so a
// parent always precedes its descendants. Returns -1, 0 or 1.
func Compare(a, b ID) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// CompareStrings orders two id strings with Compare. Malformed ids sort after
// valid ones and are ordered lexically among themselves, so sorting never fails.
func CompareStrings(a, b string) int {
	ia, errA := Parse(a)
	ib, errB := Parse(b)
	switch {
	case errA == nil && errB == nil:
		return Compare(ia, ib)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// IsDescendant reports whether id lies strictly below ancestor.
func IsDescendant(id, ancestor ID) bool {
	return len(id) > len(ancestor) && id.HasPrefix(ancestor)
}

// IsDescendantString is IsDescendant on the textual form: id starts with ancestor + ".".
func IsDescendantString(id, ancestor string) bool {
	return ancestor != "" && strings.HasPrefix(id, ancestor+Separator)
}

// ParentOf returns the textual parent of id, or "" for roots and malformed ids.
func ParentOf(id string) string {
	i := strings.LastIndex(id, Separator)
	if i < 0 {
		return ""
	}
	return id[:i]
}
