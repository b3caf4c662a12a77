package router

import "unique"

// MetadataKey is a cheaply-comparable handle onto an interned metadata key
// string. Filters that need to compare keys by identity (rather than byte
// equality) get that for free from unique.Handle's canonicalization.
type MetadataKey struct {
	h unique.Handle[string]
}

// InternKey returns the canonical MetadataKey for s. Calling it twice with
// the same string yields equal MetadataKey values.
func InternKey(s string) MetadataKey {
	return MetadataKey{h: unique.Make(s)}
}

func (k MetadataKey) String() string {
	return k.h.Value()
}

// IsPresentKey derives the "<key>/is_present" companion key Capture always
// writes alongside the captured value key.
func IsPresentKey(key string) MetadataKey {
	return InternKey(key + "/is_present")
}
