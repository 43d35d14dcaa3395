package domain

import (
	"errors"
	"fmt"
)

// FaultKind classifies why an operation failed.
type FaultKind string

const (
	FaultValidation         FaultKind = "validation"
	FaultTimeout            FaultKind = "timeout"
	FaultNetworkUnavailable FaultKind = "network_unavailable"
	FaultRemoteRejected     FaultKind = "remote_rejected"
	FaultDecode             FaultKind = "decode"
	FaultEncode             FaultKind = "encode"
	FaultDownloadFailed     FaultKind = "download_failed"
	FaultCrossOriginBlocked FaultKind = "cross_origin_blocked"
	FaultInternal           FaultKind = "internal"
)

// Fault is the error carried across the orchestrator boundary. HTTPStatus is
// only set for remote rejections, holding the upstream status code.
type Fault struct {
	Kind       FaultKind
	Message    string
	HTTPStatus int
}

func (f *Fault) Error() string {
	if f.HTTPStatus != 0 {
		return fmt.Sprintf("%s (%d): %s", f.Kind, f.HTTPStatus, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func NewFault(kind FaultKind, message string) *Fault {
	return &Fault{Kind: kind, Message: message}
}

func Faultf(kind FaultKind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the fault kind from an error chain, falling back to
// FaultInternal for errors that carry no classification.
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return FaultInternal
}

// UserMessage maps an error to the single message shown for a failed
// operation. The latest message always replaces the previous one.
func UserMessage(err error) string {
	var f *Fault
	if !errors.As(err, &f) {
		return "the operation failed, please try again later"
	}

	switch f.Kind {
	case FaultValidation:
		return f.Message
	case FaultTimeout:
		return "the operation timed out, please try again later"
	case FaultNetworkUnavailable:
		return "the service could not be reached, check your connection"
	case FaultRemoteRejected:
		if f.Message != "" {
			return fmt.Sprintf("the service rejected the request: %s", f.Message)
		}
		return fmt.Sprintf("the service rejected the request (status %d)", f.HTTPStatus)
	case FaultDecode:
		return "the file could not be read as an image"
	case FaultEncode:
		return "the image could not be re-encoded"
	case FaultDownloadFailed:
		return "the image could not be downloaded, please try again later"
	case FaultCrossOriginBlocked:
		return "the image host refused the download request"
	default:
		return "the operation failed, please try again later"
	}
}
