package hwp

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Version is the 4-part document format version (major.minor.micro.build).
// Record schemas compare it against thresholds to decide whether a trailing
// field is present.
type Version struct {
	Major uint8
	Minor uint8
	Micro uint8
	Build uint8
}

// Versions that gate optional fields.
var (
	VersionMemoShapes     = Version{5, 0, 2, 1}
	VersionChangeTracking = Version{5, 0, 3, 2}
)

// NewVersion builds a Version from its four parts, most significant first.
func NewVersion(major, minor, micro, build uint8) Version {
	return Version{Major: major, Minor: minor, Micro: micro, Build: build}
}

// VersionFromBytes decodes the on-disk layout, which stores the build number
// first and the major number last.
func VersionFromBytes(b [4]byte) Version {
	return Version{Major: b[3], Minor: b[2], Micro: b[1], Build: b[0]}
}

// ParseVersion parses "major.minor.micro.build".
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return Version{}, fmt.Errorf("%w: version %q must have 4 parts", ErrFormat, s)
	}
	var n [4]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return Version{}, fmt.Errorf("%w: version %q: %v", ErrFormat, s, err)
		}
		n[i] = uint8(v)
	}
	return Version{Major: n[0], Minor: n[1], Micro: n[2], Build: n[3]}, nil
}

// MustParseVersion is ParseVersion for literals; it panics on bad input.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Bytes is the inverse of VersionFromBytes.
func (v Version) Bytes() [4]byte {
	return [4]byte{v.Build, v.Micro, v.Minor, v.Major}
}

func (v Version) packed() uint32 {
	return uint32(v.Major)<<24 | uint32(v.Minor)<<16 | uint32(v.Micro)<<8 | uint32(v.Build)
}

// Compare returns -1, 0 or +1 ordering v and o lexicographically by
// (major, minor, micro, build).
func (v Version) Compare(o Version) int {
	return cmp.Compare(v.packed(), o.packed())
}

// Less reports whether v is older than o.
func (v Version) Less(o Version) bool { return v.Compare(o) < 0 }

// AtLeast reports v >= o.
func (v Version) AtLeast(o Version) bool { return v.Compare(o) >= 0 }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Micro, v.Build)
}

// MarshalText encodes v as "major.minor.micro.build".
func (v Version) MarshalText() ([]byte, error) { return []byte(v.String()), nil }
