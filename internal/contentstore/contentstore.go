// Package contentstore holds what the content backends share. Backends
// live in the fsstore and s3store subpackages; both return a locator from
// Put that is recorded as the entry's local path.
package contentstore

import "errors"

// ErrContentNotFound is returned by Get when no content exists for a locator.
var ErrContentNotFound = errors.New("content not found")
