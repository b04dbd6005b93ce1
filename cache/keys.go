package cache

import (
	"strings"
	"unicode"
)

// KeySeparator delimits cache key segments. Keys always carry the same
// number of segments; absent filter components become empty segments so
// prefix-based invalidation stays well defined.
const KeySeparator = ":"

// Filter holds the directory-listing query dimensions used for key
// construction. Zero values mean "unfiltered" on that dimension.
type Filter struct {
	Campus string
	Letter string
	Search string
}

// Normalize trims and case-folds every component so that logically equal
// filters produce byte-identical cache keys. Campus and letter use the
// lossy segment fold; the search term keeps a lossless encoding so that
// distinct terms can never share a key.
func (f Filter) Normalize() Filter {
	return Filter{
		Campus: NormalizeSegment(f.Campus),
		Letter: NormalizeSegment(f.Letter),
		Search: NormalizeSearch(f.Search),
	}
}

// KeyBuilder produces namespaced cache keys and invalidation prefix
// patterns for listing queries.
type KeyBuilder struct {
	namespace string
}

// NewKeyBuilder creates a KeyBuilder rooted at the given namespace,
// e.g. "siteindex".
func NewKeyBuilder(namespace string) *KeyBuilder {
	return &KeyBuilder{namespace: NormalizeSegment(namespace)}
}

// Namespace returns the namespace segment this builder was constructed with.
func (b *KeyBuilder) Namespace() string {
	return b.namespace
}

// BuildKey maps a filter to its cache key:
//
//	<namespace>:<campus-or-empty>:<letter-or-empty>:<search-or-empty>
//
// The layout is a compatibility contract with admin tooling that lists and
// deletes keys by pattern; do not reorder segments.
func (b *KeyBuilder) BuildKey(f Filter) string {
	n := f.Normalize()
	return strings.Join([]string{b.namespace, n.Campus, n.Letter, n.Search}, KeySeparator)
}

// InvalidationPatterns returns the key prefixes that can contain a row
// with the given campus and letter: the exact (campus, letter) family,
// the campus-only family, the letter-only family, the unfiltered family,
// and the namespace catch-all. Exact duplicates (both inputs empty) are
// collapsed.
func (b *KeyBuilder) InvalidationPatterns(campus, letter string) []string {
	campus = NormalizeSegment(campus)
	letter = NormalizeSegment(letter)

	patterns := []string{
		b.prefix(campus, letter),
		b.prefix(campus, ""),
		b.prefix("", letter),
		b.prefix("", ""),
		b.namespace + KeySeparator + KeySeparator,
	}
	return dedupeStrings(patterns)
}

func (b *KeyBuilder) prefix(campus, letter string) string {
	return b.namespace + KeySeparator + campus + KeySeparator + letter + KeySeparator
}

// NormalizeSearch folds a raw search term into its key segment: trimmed
// and lower-cased, with the escape and separator characters
// percent-encoded. Unlike NormalizeSegment the encoding is injective:
// the segment uniquely identifies the term handed to the repository, so
// searches differing only in punctuation keep distinct keys.
func NormalizeSearch(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "%", "%25")
	return strings.ReplaceAll(s, KeySeparator, "%3a")
}

// NormalizeSegment folds a raw filter component into a key-safe segment:
// lower-cased, trimmed, with runs of whitespace, punctuation, and glob
// metacharacters collapsed to a single underscore. Separator and wildcard
// characters must not survive into segments or they would corrupt the
// colon-delimited layout and the patterns handed to the remote store.
func NormalizeSegment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false

	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingSep = true
		}
	}

	return b.String()
}

// dedupeStrings removes duplicates while preserving first-seen order.
func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
