package retention

import (
	"errors"
	"fmt"
)

const (
	// DefaultMaxEntries is the live log size above which rotation runs.
	DefaultMaxEntries = 10000
	// DefaultRetentionCount is the number of newest entries kept after rotation.
	DefaultRetentionCount = 5000
)

// ErrInvalidPolicy indicates thresholds that cannot bound the live log.
var ErrInvalidPolicy = errors.New("invalid retention policy")

// Policy holds the retention thresholds.
type Policy struct {
	MaxEntries     int `yaml:"max_entries"`
	RetentionCount int `yaml:"retention_count"`
}

// DefaultPolicy returns the stock thresholds.
func DefaultPolicy() Policy {
	return Policy{MaxEntries: DefaultMaxEntries, RetentionCount: DefaultRetentionCount}
}

// Validate requires 0 < RetentionCount < MaxEntries.
func (p Policy) Validate() error {
	if p.RetentionCount <= 0 {
		return fmt.Errorf("%w: retention count must be positive, got %d", ErrInvalidPolicy, p.RetentionCount)
	}
	if p.RetentionCount >= p.MaxEntries {
		return fmt.Errorf("%w: retention count %d must be below max entries %d", ErrInvalidPolicy, p.RetentionCount, p.MaxEntries)
	}
	return nil
}

// Exceeded reports whether a live log of size count must be rotated.
func (p Policy) Exceeded(count int) bool {
	return count > p.MaxEntries
}
