package space

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile_RoundTrip(t *testing.T) {
	var path string
	err := Scoped(func(s *Space) error {
		if err := s.WriteFile("notes.txt", []byte("hello")); err != nil {
			return err
		}
		path = filepath.Join(s.Dir(), "notes.txt")
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
		return nil
	})
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "file should not exist anywhere after teardown")
}

func TestWriteFile_AbsoluteInside(t *testing.T) {
	err := Scoped(func(s *Space) error {
		require.NoError(t, s.MkdirAll("sub"))
		target := filepath.Join(s.Dir(), "sub", "file.txt")
		require.NoError(t, s.WriteFile(target, []byte("contained")))

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "contained", string(data))
		return nil
	})
	require.NoError(t, err)
}

func TestWriteFile_OutsideRejectedAndNothingWritten(t *testing.T) {
	outside := filepath.Join(os.TempDir(), "playpen-files-escapee.txt")
	_ = os.Remove(outside)

	err := Scoped(func(s *Space) error {
		err := s.WriteFile(outside, []byte("should never land"))
		var cerr *ContainmentError
		require.ErrorAs(t, err, &cerr)
		return nil
	})
	require.NoError(t, err)

	_, err = os.Stat(outside)
	assert.True(t, os.IsNotExist(err), "rejected write must not touch the filesystem")
}

func TestCreateFile_ReturnsUsableHandle(t *testing.T) {
	err := Scoped(func(s *Space) error {
		f, err := s.CreateFile("handle.txt")
		require.NoError(t, err)
		_, err = f.WriteString("via handle")
		require.NoError(t, err)
		require.NoError(t, f.Close())

		data, err := os.ReadFile(filepath.Join(s.Dir(), "handle.txt"))
		require.NoError(t, err)
		assert.Equal(t, "via handle", string(data))
		return nil
	})
	require.NoError(t, err)
}

func TestMkdirAll_CreatesNestedDirectories(t *testing.T) {
	err := Scoped(func(s *Space) error {
		require.NoError(t, s.MkdirAll(filepath.Join("a", "b", "c")))

		info, err := os.Stat(filepath.Join(s.Dir(), "a", "b", "c"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		return nil
	})
	require.NoError(t, err)
}
