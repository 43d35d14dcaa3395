package domain

import "strings"

// MaxUploadBytes is the fixed ceiling for any uploaded image.
const MaxUploadBytes = 10 << 20

// ValidateUpload checks an incoming file against the shared constraints.
// Every input path (upload form, drag-and-drop client, download leg) goes
// through this same check.
func ValidateUpload(mediaType string, size int) error {
	if !strings.HasPrefix(mediaType, "image/") {
		return NewFault(FaultValidation, "please upload a valid image file")
	}

	if size > MaxUploadBytes {
		return NewFault(FaultValidation, "file size must not exceed 10MB")
	}

	if size == 0 {
		return NewFault(FaultValidation, "uploaded file is empty")
	}

	return nil
}
