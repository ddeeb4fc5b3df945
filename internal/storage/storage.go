// Package storage wraps S3 object upload and time-limited access-link
// creation for the anomaly pipeline.
package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ObjectRef identifies one stored object by its storage coordinates.
// Immutable once created.
type ObjectRef struct {
	Namespace string
	Bucket    string
	Key       string
}

// AccessLink is a read-only, time-limited URL granting access to one object.
type AccessLink struct {
	URL       string
	ExpiresAt time.Time
}

// NewObjectKey generates an object key of the form <prefix>/<uuid>-<fileName>.
// The embedded UUID keeps concurrent invocations from colliding on identical
// source file names, and the prefix keeps pipeline objects apart from
// unrelated objects in the same bucket.
func NewObjectKey(prefix, fileName string) string {
	return fmt.Sprintf("%s/%s-%s", prefix, uuid.NewString(), fileName)
}
