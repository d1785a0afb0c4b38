package vecstore

import (
	"strconv"

	"github.com/lib/pq"
)

// Scope restricts a search to a set of source files. A nil Scope means
// the whole collection.
type Scope struct {
	Sources []string
}

// ScopeForFiles builds the retrieval scope for an optional filename
// list. One filename means exact match; several mean match-any, so
// multi-file scoping stays inclusive rather than intersective.
func ScopeForFiles(files []string) *Scope {
	if len(files) == 0 {
		return nil
	}
	sources := make([]string, len(files))
	copy(sources, files)
	return &Scope{Sources: sources}
}

// whereClause renders the scope as a SQL predicate on the source
// column, using the given positional placeholder index.
func (s *Scope) whereClause(argIndex int) (string, []interface{}) {
	if s == nil || len(s.Sources) == 0 {
		return "", nil
	}
	placeholder := "$" + strconv.Itoa(argIndex)
	if len(s.Sources) == 1 {
		return " AND source = " + placeholder, []interface{}{s.Sources[0]}
	}
	return " AND source = ANY(" + placeholder + ")", []interface{}{pq.Array(s.Sources)}
}
