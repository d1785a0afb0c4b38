package vecstore

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestScopeForFilesEmpty(t *testing.T) {
	require.Nil(t, ScopeForFiles(nil))
	require.Nil(t, ScopeForFiles([]string{}))
}

func TestScopeForFilesCopiesInput(t *testing.T) {
	files := []string{"a.txt", "b.txt"}
	scope := ScopeForFiles(files)
	files[0] = "mutated"
	require.Equal(t, []string{"a.txt", "b.txt"}, scope.Sources)
}

func TestWhereClauseNilScope(t *testing.T) {
	var scope *Scope
	clause, args := scope.whereClause(2)
	require.Empty(t, clause)
	require.Nil(t, args)
}

func TestWhereClauseSingleSource(t *testing.T) {
	scope := ScopeForFiles([]string{"a.txt"})
	clause, args := scope.whereClause(2)
	require.Equal(t, " AND source = $2", clause)
	require.Equal(t, []interface{}{"a.txt"}, args)
}

func TestWhereClauseMultipleSources(t *testing.T) {
	scope := ScopeForFiles([]string{"a.txt", "b.txt"})
	clause, args := scope.whereClause(3)
	require.Equal(t, " AND source = ANY($3)", clause)
	require.Len(t, args, 1)
	require.Equal(t, pq.Array([]string{"a.txt", "b.txt"}), args[0])
}
