package ports

// FileSystem is the slice of file access lanecrop needs outside of the
// media layer: region files in, summaries and debug artifacts out, and
// size lookups for finished lanes.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces path with data. Parent directories are created
	// and readers never observe a partially written file.
	WriteFile(path string, data []byte) error

	MkdirAll(path string) error

	// Exists reports whether path names a file or directory.
	Exists(path string) (bool, error)

	// Size returns the length of a regular file in bytes.
	Size(path string) (int64, error)
}
