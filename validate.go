package hwp

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"
)

// Validate decodes b and reports the first problem found, or nil when the
// document decodes and passes validation.
func Validate(b []byte, opts ...ReadOption) error {
	_, err := DecodeBytes(b, opts...)
	return err
}

func validateDocument(doc *Document, limits Limits) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrValidation)
	}
	if !bytes.HasPrefix(doc.Header.Signature[:], []byte(Signature)) {
		return fmt.Errorf("%w: header signature", ErrValidation)
	}
	if len(doc.BodyText.Sections) > limits.MaxSections {
		return fmt.Errorf("%w: too many sections", ErrLimitExceeded)
	}
	if doc.ViewText != nil && !doc.Header.Flags.Distributed {
		return fmt.Errorf("%w: ViewText present in a document that is not distributed", ErrValidation)
	}
	if len(doc.BinData) > limits.MaxAttachments {
		return fmt.Errorf("%w: too many attachments", ErrLimitExceeded)
	}
	seen := make(map[string]struct{}, len(doc.BinData))
	for i, a := range doc.BinData {
		if err := validateAttachmentName(a.Name); err != nil {
			return fmt.Errorf("%w: attachment %d name: %v", ErrValidation, i, err)
		}
		key := strings.ToLower(a.Name)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: duplicate attachment %q", ErrValidation, a.Name)
		}
		seen[key] = struct{}{}
		if uint64(len(a.Data)) > limits.MaxInflatedSize {
			return fmt.Errorf("%w: attachment %q too large", ErrLimitExceeded, a.Name)
		}
	}
	return nil
}

// validateAttachmentName accepts a single path element that is safe to join
// onto an output directory.
func validateAttachmentName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is empty")
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("name is not valid UTF-8")
	}
	if strings.ContainsAny(name, "/\\:\x00") {
		return fmt.Errorf("name must not contain separators")
	}
	if name == "." || name == ".." || path.Clean(name) != name {
		return fmt.Errorf("name must not escape")
	}
	return nil
}
