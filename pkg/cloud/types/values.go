package types

// BoolPtr returns a pointer to the given bool.
func BoolPtr(v bool) *bool {
	return &v
}

// IsTrue reports whether p is set and true.
func IsTrue(p *bool) bool {
	return p != nil && *p
}

// IsFalse reports whether p is set and false. Unset is neither true nor
// false, which matters for toggles whose default is true.
func IsFalse(p *bool) bool {
	return p != nil && !*p
}
