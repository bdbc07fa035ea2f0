// Package wordlist provides word list filtering helpers.
package wordlist

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// Unique returns a filter that keeps only the first occurrence of each
// word. The returned filter is not safe for concurrent use.
func Unique() FilterFunc {
	seen := make(map[string]struct{})
	return func(word string) bool {
		if _, ok := seen[word]; ok {
			return false
		}
		seen[word] = struct{}{}
		return true
	}
}

// KeepAll returns a filter that keeps every word.
func KeepAll() FilterFunc {
	return func(string) bool { return true }
}
