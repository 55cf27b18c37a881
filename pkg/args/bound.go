package args

// BoundArguments maps parameter names to converted values. A parameter that
// fell back to its absence value is present with a nil value.
type BoundArguments map[string]any

// Has reports whether name was bound to a non-nil value.
func (b BoundArguments) Has(name string) bool {
	v, ok := b[name]
	return ok && v != nil
}

// Get returns the value bound to name as a T.
func Get[T any](b BoundArguments, name string) (T, bool) {
	v, ok := b[name].(T)
	return v, ok
}

// GetOr returns the value bound to name, or def when it is absent or of
// another type.
func GetOr[T any](b BoundArguments, name string, def T) T {
	if v, ok := b[name].(T); ok {
		return v
	}
	return def
}

// String returns the string bound to name, or "".
func (b BoundArguments) String(name string) string {
	return GetOr(b, name, "")
}

// Int returns the int bound to name, or 0.
func (b BoundArguments) Int(name string) int {
	return GetOr(b, name, 0)
}

// Bool returns the bool bound to name, or false.
func (b BoundArguments) Bool(name string) bool {
	return GetOr(b, name, false)
}
