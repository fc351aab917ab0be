package memory

import "fmt"

// UnknownIndexError is returned when a query names an index or key the schema lacks
type UnknownIndexError struct {
	Table string
	Index string
	Key   string
}

func (e *UnknownIndexError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("table %s: index %q has no key %q", e.Table, e.Index, e.Key)
	}
	return fmt.Sprintf("table %s: unknown index %q", e.Table, e.Index)
}
