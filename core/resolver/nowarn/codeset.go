package nowarn

// Code is a diagnostic identifier, e.g. a NuGet "NU1xxx" warning code.
// Matches resolver.NuGetErrorCode's string-backed shape.
type Code string

// CodeSet is a set of diagnostic Codes.
//
// A nil CodeSet and an empty, non-nil CodeSet are both "no codes" for
// iteration and length purposes, but the two are NOT interchangeable
// everywhere: union and isSubset treat nil as empty, while the admission
// cache's intersect treats nil as "unconstrained so far" and must not
// collapse it to empty (see admit in walker.go). Callers that need the
// "unconstrained" distinction must track nil-ness explicitly; callers that
// only need set contents can rely on len/range working correctly on nil.
type CodeSet map[Code]struct{}

// NewCodeSet builds a CodeSet from the given codes. Returns an empty,
// non-nil set when given no codes.
func NewCodeSet(codes ...Code) CodeSet {
	s := make(CodeSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Clone returns a copy of s, preserving nil-ness.
func (s CodeSet) Clone() CodeSet {
	if s == nil {
		return nil
	}
	out := make(CodeSet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// Equal reports whether s and other contain the same codes, treating nil
// and empty as equal.
func (s CodeSet) Equal(other CodeSet) bool {
	if len(s) != len(other) {
		return false
	}
	for c := range s {
		if _, ok := other[c]; !ok {
			return false
		}
	}
	return true
}

// unionCodes returns the union of a and b. Null-safe: if either is nil, the
// other is returned as-is (no copy).
func unionCodes(a, b CodeSet) CodeSet {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.Equal(b) {
		return a
	}
	out := make(CodeSet, len(a)+len(b))
	for c := range a {
		out[c] = struct{}{}
	}
	for c := range b {
		out[c] = struct{}{}
	}
	return out
}

// intersectCodes returns the intersection of a and b. Null-safe: if either
// is nil, the other is returned as-is. nil means "no constraint yet", not
// "empty". Callers that need a true empty-on-absent intersection must
// normalize nil to an empty CodeSet before calling this.
func intersectCodes(a, b CodeSet) CodeSet {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	out := make(CodeSet, min(len(a), len(b)))
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for c := range small {
		if _, ok := big[c]; ok {
			out[c] = struct{}{}
		}
	}
	return out
}

// isSubsetCodes reports whether a ⊆ b, treating nil as empty on both sides.
// An empty (or nil) a is always a subset.
func isSubsetCodes(a, b CodeSet) bool {
	for c := range a {
		if _, ok := b[c]; !ok {
			return false
		}
	}
	return true
}

// normalizeCodes converts a nil CodeSet to a concrete empty one. Callers
// must use this before storing a freshly computed "so far" value (an
// admitted path, a package's effective suppression) anywhere it will later
// be fed back into intersectCodes; otherwise a later nil-as-unconstrained
// read would treat a true zero-suppression result as no information at all.
func normalizeCodes(s CodeSet) CodeSet {
	if s == nil {
		return NewCodeSet()
	}
	return s
}
