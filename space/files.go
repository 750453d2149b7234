package space

import "os"

// WriteFile writes contents to path inside the scratch directory.
// Relative paths resolve against the scratch root; absolute paths must
// pass containment.
func (s *Space) WriteFile(path string, contents []byte) error {
	resolved, err := s.Resolve(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(resolved, contents, 0644); err != nil {
		return err
	}
	return nil
}

// CreateFile creates (or truncates) a file inside the scratch directory
// and returns the open handle. The caller owns closing it; the file
// itself is removed with the rest of the scratch directory at exit.
func (s *Space) CreateFile(path string) (*os.File, error) {
	resolved, err := s.Resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Create(resolved)
}

// MkdirAll creates a directory inside the scratch directory, along with
// any missing parents.
func (s *Space) MkdirAll(path string) error {
	resolved, err := s.Resolve(path)
	if err != nil {
		return err
	}
	return os.MkdirAll(resolved, 0755)
}
