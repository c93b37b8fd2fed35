package groups

import (
	"errors"
	"fmt"
)

// SkipReason indicates why a group could not run.
type SkipReason string

const (
	// SkipReasonBinaryNotFound indicates a Dobby executable is missing.
	SkipReasonBinaryNotFound SkipReason = "binary_not_found"
	// SkipReasonAssetNotFound indicates a bundle, spec or expected file is missing.
	SkipReasonAssetNotFound SkipReason = "asset_not_found"
	// SkipReasonThunderUnreachable indicates no Thunder server answered.
	SkipReasonThunderUnreachable SkipReason = "thunder_unreachable"
	// SkipReasonNoDisplay indicates no Wayland display is configured.
	SkipReasonNoDisplay SkipReason = "no_display"
)

// SkipError reports an unmet precondition. A group returning it is counted
// as skipped, not failed.
type SkipError struct {
	Group  string
	Reason SkipReason
	Detail string
}

func (e *SkipError) Error() string {
	prefix := fmt.Sprintf("[%s]", e.Group)
	switch e.Reason {
	case SkipReasonBinaryNotFound:
		return fmt.Sprintf("%s %s not found, skipping", prefix, e.Detail)
	case SkipReasonAssetNotFound:
		return fmt.Sprintf("%s asset %s not found, skipping", prefix, e.Detail)
	case SkipReasonThunderUnreachable:
		return fmt.Sprintf("%s Thunder not reachable at %s, skipping", prefix, e.Detail)
	case SkipReasonNoDisplay:
		return prefix + " no Wayland display available, skipping"
	default:
		return fmt.Sprintf("%s skipped (%s)", prefix, e.Reason)
	}
}

// IsSkipError returns true if the error is or wraps a SkipError.
func IsSkipError(err error) bool {
	var skipErr *SkipError
	return errors.As(err, &skipErr)
}
