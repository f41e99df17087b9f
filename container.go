package hwp

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/richardlehane/mscfb"
)

// Stream paths inside the compound file.
const (
	StreamFileHeader = "FileHeader"
	StreamDocInfo    = "DocInfo"
	StorageBodyText  = "BodyText"
	StorageViewText  = "ViewText"
	StorageBinData   = "BinData"
)

// SectionStream returns "<storage>/Section<n>".
func SectionStream(storage string, n int) string {
	return fmt.Sprintf("%s/Section%d", storage, n)
}

// Container is an opened compound file. Every entry is loaded when the
// container is opened; lookups are case-insensitive like the compound file
// directory itself.
type Container struct {
	entries map[string]containerEntry
	names   []string
}

type containerEntry struct {
	name   string
	parent string
	data   []byte
}

// OpenContainer parses a compound file held in b.
func OpenContainer(b []byte, opts ...ReadOption) (*Container, error) {
	cfg := newReadConfig(opts)
	if uint64(len(b)) > cfg.limits.MaxFileSize {
		return nil, fmt.Errorf("%w: file is %d bytes", ErrLimitExceeded, len(b))
	}
	r, err := newCFBReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContainer, err)
	}
	c := &Container{entries: make(map[string]containerEntry)}
	for {
		entry, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrContainer, err)
		}
		if entry.Size < 0 || uint64(entry.Size) > cfg.limits.MaxStreamSize {
			return nil, fmt.Errorf("%w: stream %q is %d bytes", ErrLimitExceeded, entry.Name, entry.Size)
		}
		parent := strings.Join(entry.Path, "/")
		name := entry.Name
		if parent != "" {
			name = parent + "/" + entry.Name
		}
		data, err := readAll(io.LimitReader(entry, entry.Size))
		if err != nil {
			return nil, fmt.Errorf("%w: reading %q: %v", ErrContainer, name, err)
		}
		c.entries[strings.ToLower(name)] = containerEntry{name: name, parent: strings.ToLower(parent), data: data}
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)
	return c, nil
}

// newCFBReader is a variable so tests can substitute failures.
var newCFBReader = func(ra io.ReaderAt) (*mscfb.Reader, error) { return mscfb.New(ra) }

func cleanPath(p string) string {
	return strings.ToLower(strings.Trim(p, "/"))
}

// StorageLen returns how many entries sit directly under the storage at path.
func (c *Container) StorageLen(path string) int {
	key := cleanPath(path)
	n := 0
	for _, e := range c.entries {
		if e.parent == key {
			n++
		}
	}
	return n
}

// Has reports whether an entry exists at path.
func (c *Container) Has(path string) bool {
	_, ok := c.entries[cleanPath(path)]
	return ok
}

// ReadStream returns the bytes of the stream at path.
func (c *Container) ReadStream(path string) ([]byte, error) {
	e, ok := c.entries[cleanPath(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrStreamNotFound, path)
	}
	return e.data, nil
}

// OpenStream opens the stream at path for sequential reading.
func (c *Container) OpenStream(path string) (io.Reader, error) {
	b, err := c.ReadStream(path)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

// Names lists every entry path, sorted.
func (c *Container) Names() []string {
	return append([]string(nil), c.names...)
}
