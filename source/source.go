// Package source opens the CSV inputs a merge reads from. It is a
// deliberately small descendant of cetl's opener/openers abstraction:
// csvmerge3 always needs exactly three distinct, concurrently open files
// (LCA, A, B), never a concatenated multi-source stream, so the scheme
// registry and mux-reader machinery that abstraction built for ETL-style
// source fan-in has no job to do here. What's kept is the shape: a named
// io.ReadCloser factory, a regular-file implementation, and an in-memory
// one for tests.
package source

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Opener produces a readable stream for one named input.
type Opener interface {
	Open() (io.ReadCloser, error)
	Name() string
}

// Open opens path as a regular file, transparently decompressing it if
// its name ends in .gz.
func Open(path string) (io.ReadCloser, error) {
	return RegularFile{Path: path}.Open()
}

// RegularFile opens a path on the local filesystem. A ".gz" suffix is
// decompressed transparently, the way a merge input might arrive
// pre-compressed from a long-lived archive.
type RegularFile struct {
	Path string
}

func (f RegularFile) Name() string { return f.Path }

func (f RegularFile) Open() (io.ReadCloser, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("source: opening %q: %w", f.Path, err)
	}
	if !strings.HasSuffix(f.Path, ".gz") {
		return file, nil
	}
	gz, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("source: opening gzip stream %q: %w", f.Path, err)
	}
	return &gzipReadCloser{gz: gz, file: file}, nil
}

// gzipReadCloser closes both the gzip stream and the underlying file.
type gzipReadCloser struct {
	gz   *gzip.Reader
	file *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipReadCloser) Close() error {
	gzErr := g.gz.Close()
	fileErr := g.file.Close()
	if gzErr != nil {
		return gzErr
	}
	return fileErr
}

// InMemory is an Opener backed by an in-memory byte slice, for tests and
// for embedding small fixture inputs.
type InMemory struct {
	Data       []byte
	SourceName string
}

func (m InMemory) Name() string { return m.SourceName }

func (m InMemory) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(string(m.Data))), nil
}
