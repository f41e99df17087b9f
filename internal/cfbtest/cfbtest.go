// Package cfbtest writes small compound files (OLE2 structured storage) for
// tests. It produces version 3 files with 512-byte sectors; streams shorter
// than 4096 bytes go to the mini stream.
package cfbtest

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

const (
	sectorSize     = 512
	miniSectorSize = 64
	miniCutoff     = 4096
	dirEntrySize   = 128
	headerDIFATs   = 109

	freeSect   = 0xFFFFFFFF
	endOfChain = 0xFFFFFFFE
	fatSect    = 0xFFFFFFFD
	noStream   = 0xFFFFFFFF

	typeStorage = 1
	typeStream  = 2
	typeRoot    = 5
	colorBlack  = 1
)

var signature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Entry is one stream to store. Path separates storages with "/"; the
// storages are created as needed.
type Entry struct {
	Path string
	Data []byte
}

type node struct {
	name     string
	storage  bool
	data     []byte
	children []*node
	id       uint32
	start    uint32
}

// Build returns the bytes of a compound file holding entries.
func Build(entries []Entry) ([]byte, error) {
	root := &node{name: "Root Entry", storage: true}
	for _, e := range entries {
		if err := insert(root, strings.Split(strings.Trim(e.Path, "/"), "/"), e.Data); err != nil {
			return nil, err
		}
	}

	// Number the directory in pre-order; the root is entry 0.
	var dir []*node
	var walk func(n *node)
	walk = func(n *node) {
		n.id = uint32(len(dir))
		dir = append(dir, n)
		sort.Slice(n.children, func(i, j int) bool { return lessName(n.children[i].name, n.children[j].name) })
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(root)

	// Mini stream.
	var mini, big []*node
	for _, n := range dir[1:] {
		switch {
		case n.storage || len(n.data) == 0:
		case len(n.data) < miniCutoff:
			mini = append(mini, n)
		default:
			big = append(big, n)
		}
	}
	var miniStream []byte
	var miniFAT []uint32
	for _, n := range mini {
		n.start = uint32(len(miniFAT))
		count := sectorsFor(len(n.data), miniSectorSize)
		for i := 0; i < count; i++ {
			next := uint32(len(miniFAT) + 1)
			if i == count-1 {
				next = endOfChain
			}
			miniFAT = append(miniFAT, next)
		}
		miniStream = append(miniStream, pad(n.data, miniSectorSize)...)
	}

	dirSectors := sectorsFor(len(dir)*dirEntrySize, sectorSize)
	miniFATSectors := sectorsFor(len(miniFAT)*4, sectorSize)
	miniStreamSectors := sectorsFor(len(miniStream), sectorSize)
	bigSectors := 0
	for _, n := range big {
		bigSectors += sectorsFor(len(n.data), sectorSize)
	}
	other := dirSectors + miniFATSectors + miniStreamSectors + bigSectors
	fatSectors := 1
	for fatSectors*sectorSize/4 < fatSectors+other {
		fatSectors++
	}
	if fatSectors > headerDIFATs {
		return nil, fmt.Errorf("cfbtest: %d FAT sectors need a DIFAT chain", fatSectors)
	}
	total := fatSectors + other

	fat := make([]uint32, fatSectors*sectorSize/4)
	for i := range fat {
		fat[i] = freeSect
	}
	for i := 0; i < fatSectors; i++ {
		fat[i] = fatSect
	}
	next := uint32(fatSectors)
	chain := func(count int) uint32 {
		if count == 0 {
			return endOfChain
		}
		start := next
		for i := 0; i < count; i++ {
			if i == count-1 {
				fat[next] = endOfChain
			} else {
				fat[next] = next + 1
			}
			next++
		}
		return start
	}
	dirStart := chain(dirSectors)
	miniFATStart := chain(miniFATSectors)
	miniStreamStart := chain(miniStreamSectors)
	for _, n := range big {
		n.start = chain(sectorsFor(len(n.data), sectorSize))
	}

	out := make([]byte, sectorSize*(1+total))
	le := binary.LittleEndian

	// Header.
	copy(out, signature)
	le.PutUint16(out[24:], 0x003E)
	le.PutUint16(out[26:], 3)
	le.PutUint16(out[28:], 0xFFFE)
	le.PutUint16(out[30:], 9)
	le.PutUint16(out[32:], 6)
	le.PutUint32(out[44:], uint32(fatSectors))
	le.PutUint32(out[48:], dirStart)
	le.PutUint32(out[56:], miniCutoff)
	le.PutUint32(out[60:], miniFATStart)
	le.PutUint32(out[64:], uint32(miniFATSectors))
	le.PutUint32(out[68:], endOfChain)
	for i := 0; i < headerDIFATs; i++ {
		v := uint32(freeSect)
		if i < fatSectors {
			v = uint32(i)
		}
		le.PutUint32(out[76+4*i:], v)
	}

	sector := func(n uint32) []byte {
		off := sectorSize * (int(n) + 1)
		return out[off:]
	}
	fatBytes := make([]byte, 4*len(fat))
	for i, v := range fat {
		le.PutUint32(fatBytes[4*i:], v)
	}
	writeChain(sector, 0, fatBytes)

	// Directory.
	dirBytes := make([]byte, dirSectors*sectorSize)
	// Sibling links are written into child entries while their parent is
	// visited, so every entry starts unlinked before any is filled in.
	for i := 0; i < dirSectors*sectorSize/dirEntrySize; i++ {
		e := dirBytes[i*dirEntrySize:]
		le.PutUint32(e[68:], noStream)
		le.PutUint32(e[72:], noStream)
		le.PutUint32(e[76:], noStream)
	}
	for _, n := range dir {
		e := dirBytes[int(n.id)*dirEntrySize:]
		name, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(n.name))
		if err != nil {
			return nil, err
		}
		if len(name) > 62 {
			return nil, fmt.Errorf("cfbtest: name %q too long", n.name)
		}
		copy(e, name)
		le.PutUint16(e[64:], uint16(len(name)+2))
		switch {
		case n.id == 0:
			e[66] = typeRoot
		case n.storage:
			e[66] = typeStorage
		default:
			e[66] = typeStream
		}
		e[67] = colorBlack
		if len(n.children) > 0 {
			le.PutUint32(e[76:], n.children[0].id)
			for i, c := range n.children[:len(n.children)-1] {
				le.PutUint32(dirBytes[int(c.id)*dirEntrySize+72:], n.children[i+1].id)
			}
		}
		switch {
		case n.id == 0:
			le.PutUint32(e[116:], miniStreamStart)
			le.PutUint64(e[120:], uint64(len(miniStream)))
		case n.storage:
		case len(n.data) == 0:
			le.PutUint32(e[116:], endOfChain)
		default:
			le.PutUint32(e[116:], n.start)
			le.PutUint64(e[120:], uint64(len(n.data)))
		}
	}
	writeChain(sector, dirStart, dirBytes)

	// Mini FAT and mini stream.
	miniFATBytes := make([]byte, miniFATSectors*sectorSize)
	for i := range miniFATBytes {
		miniFATBytes[i] = 0xFF
	}
	for i, v := range miniFAT {
		le.PutUint32(miniFATBytes[4*i:], v)
	}
	writeChain(sector, miniFATStart, miniFATBytes)
	writeChain(sector, miniStreamStart, miniStream)

	for _, n := range big {
		writeChain(sector, n.start, n.data)
	}
	return out, nil
}

func insert(parent *node, parts []string, data []byte) error {
	name := parts[0]
	if name == "" {
		return fmt.Errorf("cfbtest: empty path element")
	}
	for _, c := range parent.children {
		if strings.EqualFold(c.name, name) {
			if len(parts) == 1 || !c.storage {
				return fmt.Errorf("cfbtest: duplicate entry %q", name)
			}
			return insert(c, parts[1:], data)
		}
	}
	if len(parts) == 1 {
		parent.children = append(parent.children, &node{name: name, data: data})
		return nil
	}
	s := &node{name: name, storage: true}
	parent.children = append(parent.children, s)
	return insert(s, parts[1:], data)
}

// lessName orders directory names the way compound files compare them:
// shorter names first, then case-insensitively.
func lessName(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return strings.ToUpper(a) < strings.ToUpper(b)
}

func sectorsFor(n, size int) int { return (n + size - 1) / size }

func pad(b []byte, size int) []byte {
	out := make([]byte, sectorsFor(len(b), size)*size)
	copy(out, b)
	return out
}

// writeChain copies data into consecutive sectors starting at start. Build
// allocates every chain contiguously.
func writeChain(sector func(uint32) []byte, start uint32, data []byte) {
	if len(data) == 0 {
		return
	}
	copy(sector(start), data)
}
