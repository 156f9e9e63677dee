package model

// TagRef is an existing tag reference
type TagRef struct {
	Ref string // e.g. refs/tags/exampleApp-2024-01-15-dev
	SHA string // object the reference points at
}

// RefLookup is the result of looking up a tag reference. A failed lookup is
// reported as an error alongside a nil RefLookup.
type RefLookup struct {
	Ref *TagRef
}

// Found reports whether the reference exists
func (l *RefLookup) Found() bool {
	return l != nil && l.Ref != nil
}

// ReleaseLookup is the result of looking up a release by tag. A failed lookup
// is reported as an error alongside a nil ReleaseLookup.
type ReleaseLookup struct {
	Release *Release
}

// Found reports whether the release exists
func (l *ReleaseLookup) Found() bool {
	return l != nil && l.Release != nil
}
