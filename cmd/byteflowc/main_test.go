package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_readSource_file(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.c")
	require.NoError(t, os.WriteFile(path, []byte("int main() {}"), 0o644))

	src, err := readSource([]string{path})
	require.NoError(t, err)
	require.Equal(t, "int main() {}", src)
}

func Test_readSource_missingFile(t *testing.T) {
	_, err := readSource([]string{"/no/such/file.c"})
	require.Error(t, err)
}
