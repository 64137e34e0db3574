package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedExtension(t *testing.T) {
	assert.True(t, AllowedExtension("policy.pdf"))
	assert.True(t, AllowedExtension("POLICY.PDF"))
	assert.True(t, AllowedExtension("mail.eml"))
	assert.True(t, AllowedExtension("notes.md"))
	assert.False(t, AllowedExtension("image.png"))
	assert.False(t, AllowedExtension("archive"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "doc.pdf", SanitizeFilename("../../etc/doc.pdf"))
	assert.Equal(t, "doc.pdf", SanitizeFilename("doc.pdf"))
	assert.NotContains(t, SanitizeFilename("a/b\\c:doc.pdf"), "/")
}

func TestSaveFileWithTimestamp(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveFileWithTimestamp([]byte("content"), "report.txt", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	name := filepath.Base(path)
	assert.True(t, strings.HasPrefix(name, "report_"))
	assert.True(t, strings.HasSuffix(name, ".txt"))
}
