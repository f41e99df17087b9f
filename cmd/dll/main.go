// Package main provides C-compatible exports for the hwp library.
// Build with: go build -buildmode=c-shared -o hwp.dll
package main

/*
#include <stdlib.h>
#include <stdint.h>

// Result structure for operations that return data
typedef struct {
    char* data;
    int   data_len;
    char* error;
} HwpResult;
*/
import "C"

import (
	"encoding/json"
	"unsafe"

	"github.com/logicossoftware/go-hwp"
)

func main() {}

// HwpFreeResult frees memory allocated by other Hwp functions.
// Must be called to avoid memory leaks.
//
//export HwpFreeResult
func HwpFreeResult(result C.HwpResult) {
	if result.data != nil {
		C.free(unsafe.Pointer(result.data))
	}
	if result.error != nil {
		C.free(unsafe.Pointer(result.error))
	}
}

// HwpFreeString frees a C string allocated by Go.
//
//export HwpFreeString
func HwpFreeString(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

// makeResult creates a result with data.
func makeResult(data []byte) C.HwpResult {
	var result C.HwpResult
	if len(data) > 0 {
		result.data = (*C.char)(C.CBytes(data))
		result.data_len = C.int(len(data))
	}
	return result
}

// makeError creates a result with an error message.
func makeError(err error) C.HwpResult {
	var result C.HwpResult
	result.error = C.CString(err.Error())
	return result
}

func decode(data *C.char, dataLen C.int, opts ...hwp.ReadOption) (*hwp.Document, error) {
	return hwp.DecodeBytes(C.GoBytes(unsafe.Pointer(data), dataLen), opts...)
}

// HwpDecodeSummary decodes an HWP file and returns a JSON summary of it.
// Parameters:
//   - data: pointer to HWP file bytes
//   - dataLen: length of the data
//
// Returns HwpResult with a JSON string or error. Call HwpFreeResult when done.
// The JSON object carries version, flags, section and paragraph counts, font
// names and attachment names.
//
//export HwpDecodeSummary
func HwpDecodeSummary(data *C.char, dataLen C.int) C.HwpResult {
	doc, err := decode(data, dataLen, hwp.WithBinData(false))
	if err != nil {
		return makeError(err)
	}
	b, err := json.Marshal(doc.Summarize())
	if err != nil {
		return makeError(err)
	}
	return makeResult(b)
}

// HwpExtractText returns the UTF-8 plain text of an HWP file.
//
//export HwpExtractText
func HwpExtractText(data *C.char, dataLen C.int) C.HwpResult {
	doc, err := decode(data, dataLen, hwp.WithBinData(false))
	if err != nil {
		return makeError(err)
	}
	return makeResult([]byte(doc.Text()))
}

// HwpGetBinData retrieves the raw data of an embedded attachment by name,
// for example "BIN0001.png".
//
// Returns HwpResult with the attachment bytes or error. Call HwpFreeResult when done.
//
//export HwpGetBinData
func HwpGetBinData(data *C.char, dataLen C.int, name *C.char) C.HwpResult {
	doc, err := decode(data, dataLen, hwp.WithViewText(false))
	if err != nil {
		return makeError(err)
	}
	want := C.GoString(name)
	for _, a := range doc.BinData {
		if a.Name == want {
			return makeResult(a.Data)
		}
	}
	var result C.HwpResult
	result.error = C.CString("attachment not found: " + want)
	return result
}

// HwpGetSectionCount returns the number of BodyText sections, or -1 on error.
//
//export HwpGetSectionCount
func HwpGetSectionCount(data *C.char, dataLen C.int) C.int {
	doc, err := decode(data, dataLen, hwp.WithBinData(false), hwp.WithViewText(false))
	if err != nil {
		return -1
	}
	return C.int(len(doc.BodyText.Sections))
}

// HwpValidate decodes and validates an HWP file.
// Returns NULL on success, or an error message string on failure.
// Call HwpFreeString on the result if non-NULL.
//
//export HwpValidate
func HwpValidate(data *C.char, dataLen C.int) *C.char {
	if err := hwp.Validate(C.GoBytes(unsafe.Pointer(data), dataLen)); err != nil {
		return C.CString(err.Error())
	}
	return nil
}
