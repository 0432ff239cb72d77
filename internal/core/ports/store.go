package ports

// ArtifactStore defines the interface for reading sources and writing build outputs.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ArtifactStore interface {
	// ReadFile returns the contents of a source file.
	ReadFile(path string) ([]byte, error)

	// WriteFile atomically replaces path with data, creating parent directories.
	// Readers observe either the previous content or the new one, never a partial file.
	WriteFile(path string, data []byte) error

	// RemoveAll deletes path and everything below it. A missing path is not an error.
	RemoveAll(path string) error
}
