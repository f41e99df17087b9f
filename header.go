package hwp

import (
	"bytes"
	"fmt"
)

// Flags is the property bit set of the file header.
type Flags struct {
	Compressed           bool
	Encrypted            bool
	Distributed          bool
	Script               bool
	DRM                  bool
	XMLTemplate          bool
	History              bool
	Signed               bool
	CertificateEncrypted bool
	SignatureReserved    bool
	CertificateDRM       bool
	CCL                  bool
	MobileOptimized      bool
	PrivacySecurity      bool
	TrackChanges         bool
	KOGL                 bool
	VideoControl         bool
	TOCField             bool

	// Reserved holds bits 18..31 shifted down to bit 0.
	Reserved uint32
}

const flagsReservedStart = 18

func (f *Flags) fields() []*bool {
	return []*bool{
		&f.Compressed, &f.Encrypted, &f.Distributed, &f.Script, &f.DRM,
		&f.XMLTemplate, &f.History, &f.Signed, &f.CertificateEncrypted,
		&f.SignatureReserved, &f.CertificateDRM, &f.CCL, &f.MobileOptimized,
		&f.PrivacySecurity, &f.TrackChanges, &f.KOGL, &f.VideoControl, &f.TOCField,
	}
}

func decodeFlags(bits uint32) Flags {
	var f Flags
	for i, p := range f.fields() {
		*p = Flag(bits, uint(i))
	}
	f.Reserved = ValueRange(bits, flagsReservedStart, 31)
	return f
}

func (f Flags) bits() uint32 {
	var bits uint32
	for i, p := range f.fields() {
		if *p {
			bits |= 1 << uint(i)
		}
	}
	return bits | f.Reserved<<flagsReservedStart
}

// License is the license bit set of the file header.
type License struct {
	CCL            bool
	CopyRestricted bool
	CopySameTerms  bool
	Reserved       uint32
}

const licenseReservedStart = 3

func decodeLicense(bits uint32) License {
	return License{
		CCL:            Flag(bits, 0),
		CopyRestricted: Flag(bits, 1),
		CopySameTerms:  Flag(bits, 2),
		Reserved:       ValueRange(bits, licenseReservedStart, 31),
	}
}

func (l License) bits() uint32 {
	var bits uint32
	if l.CCL {
		bits |= 1 << 0
	}
	if l.CopyRestricted {
		bits |= 1 << 1
	}
	if l.CopySameTerms {
		bits |= 1 << 2
	}
	return bits | l.Reserved<<licenseReservedStart
}

type EncryptVersion uint32

const (
	EncryptNone EncryptVersion = iota
	EncryptLegacy
	EncryptV30Enhanced
	EncryptV30Old
	EncryptV70
)

// KOGL license origin codes.
const (
	KOGLCountryKorea uint8 = 6
	KOGLCountryUS    uint8 = 15
)

// FileHeader is the decoded 256-byte FileHeader stream.
type FileHeader struct {
	Signature      [signatureSize]byte
	Version        Version
	Flags          Flags
	License        License
	EncryptVersion EncryptVersion
	KOGLCountry    uint8
	Reserved       [fileHeaderReserved]byte
}

// DecodeFileHeader parses a FileHeader stream. b must be exactly 256 bytes
// and start with Signature.
func DecodeFileHeader(b []byte) (FileHeader, error) {
	w, err := readFileHeaderWire(b)
	if err != nil {
		return FileHeader{}, err
	}
	if !bytes.Equal(w.Signature[:signatureCheckSize], []byte(Signature)) {
		return FileHeader{}, fmt.Errorf("%w: %q", ErrSignature, w.Signature[:signatureCheckSize])
	}
	return FileHeader{
		Signature:      w.Signature,
		Version:        VersionFromBytes(w.Version),
		Flags:          decodeFlags(w.Flags),
		License:        decodeLicense(w.License),
		EncryptVersion: EncryptVersion(w.EncryptVersion),
		KOGLCountry:    w.KOGLCountry,
		Reserved:       w.Reserved,
	}, nil
}

// MarshalBinary re-emits the 256 header bytes.
func (h FileHeader) MarshalBinary() ([]byte, error) {
	return writeFileHeaderWire(fileHeaderWire{
		Signature:      h.Signature,
		Version:        h.Version.Bytes(),
		Flags:          h.Flags.bits(),
		License:        h.License.bits(),
		EncryptVersion: uint32(h.EncryptVersion),
		KOGLCountry:    h.KOGLCountry,
		Reserved:       h.Reserved,
	}), nil
}

// NewFileHeader returns a header with the signature filled in.
func NewFileHeader(v Version, flags Flags) FileHeader {
	h := FileHeader{Version: v, Flags: flags}
	copy(h.Signature[:], Signature)
	return h
}
