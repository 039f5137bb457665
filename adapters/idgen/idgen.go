// Package idgen provides package ID generators.
package idgen

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/artpar/botdef/ports"
)

// Prefixes used for published package IDs.
const (
	InterfacePrefix   = "intver_"
	IntegrationPrefix = "integ_"
)

// UUID generates prefixed UUIDs, e.g. "intver_9f3c...".
type UUID struct {
	Prefix string
}

// New generates a new prefixed UUID v4 without dashes.
func (g UUID) New() string {
	return g.Prefix + strings.ReplaceAll(uuid.New().String(), "-", "")
}

var _ ports.IDGenerator = UUID{}

// Sequential generates deterministic IDs for tests.
type Sequential struct {
	prefix  string
	counter atomic.Uint64
}

// NewSequential creates a sequential ID generator.
func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

// New returns prefix followed by the next counter value, starting at 1.
func (s *Sequential) New() string {
	return s.prefix + strconv.FormatUint(s.counter.Add(1), 10)
}

// Reset restarts the counter.
func (s *Sequential) Reset() {
	s.counter.Store(0)
}

var _ ports.IDGenerator = (*Sequential)(nil)
