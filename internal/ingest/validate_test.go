package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "docqa/internal/pkg/errors"
)

func TestValidateFileAcceptsAllowedTypes(t *testing.T) {
	for _, name := range []string{"notes.txt", "readme.md", "paper.PDF", "report.docx"} {
		require.NoError(t, ValidateFile(name, 100, 1024))
	}
}

func TestValidateFileRejectsUnknownType(t *testing.T) {
	err := ValidateFile("malware.exe", 100, 1024)
	require.Error(t, err)
	require.True(t, errors.Is(err, appErr.ErrInvalid))
}

func TestValidateFileRejectsOversize(t *testing.T) {
	err := ValidateFile("big.txt", 2048, 1024)
	require.Error(t, err)
	require.True(t, errors.Is(err, appErr.ErrInvalid))
}

func TestValidateFileRejectsEmpty(t *testing.T) {
	require.Error(t, ValidateFile("empty.txt", 0, 1024))
	require.Error(t, ValidateFile("", 100, 1024))
}

func TestValidateFileRejectsPathTraversal(t *testing.T) {
	require.Error(t, ValidateFile("../escape.txt", 100, 1024))
	require.Error(t, ValidateFile("dir/escape.txt", 100, 1024))
}

func TestValidateFileNoSizeLimit(t *testing.T) {
	require.NoError(t, ValidateFile("big.txt", 1<<30, 0))
}
