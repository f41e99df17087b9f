package hwp

// Limits bounds the resources a single Decode may use. Zero fields take the
// defaults below.
type Limits struct {
	MaxFileSize     uint64 // whole compound file
	MaxStreamSize   uint64 // one stream as stored in the container
	MaxInflatedSize uint64 // one stream after raw deflate
	MaxRecords      int    // records per stream
	MaxSections     int    // sections per body
	MaxAttachments  int    // BinData items
}

func defaultLimits() Limits {
	return Limits{
		MaxFileSize:     2 << 30,   // 2 GiB
		MaxStreamSize:   1 << 30,   // 1 GiB
		MaxInflatedSize: 512 << 20, // 512 MiB
		MaxRecords:      4 << 20,
		MaxSections:     4096,
		MaxAttachments:  65535,
	}
}

// DefaultLimits returns the limits Decode uses when none are given.
func DefaultLimits() Limits { return defaultLimits() }

func (l Limits) withDefaults() Limits {
	d := defaultLimits()
	if l.MaxFileSize == 0 {
		l.MaxFileSize = d.MaxFileSize
	}
	if l.MaxStreamSize == 0 {
		l.MaxStreamSize = d.MaxStreamSize
	}
	if l.MaxInflatedSize == 0 {
		l.MaxInflatedSize = d.MaxInflatedSize
	}
	if l.MaxRecords == 0 {
		l.MaxRecords = d.MaxRecords
	}
	if l.MaxSections == 0 {
		l.MaxSections = d.MaxSections
	}
	if l.MaxAttachments == 0 {
		l.MaxAttachments = d.MaxAttachments
	}
	return l
}
