// Package ids generates identifiers for compiled artefacts.
//
// Stable ids are derived from a content hash so that recompiling the same
// input yields the same id. Random ids are drawn from a swappable source;
// the only requirement on the source is that two draws within a single
// compile are distinct.
package ids

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// namespace seeds every stable id. Changing it changes every stable id the
// compiler has ever emitted.
var namespace = uuid.MustParse("6ba7b812-9dad-11d1-80b4-00c04fd430c8")

// Stable hashes a list of atoms into a UUID-shaped string. Atoms may be
// strings, integers, floats, booleans or nil; anything else is formatted
// with %v.
func Stable(atoms ...any) string {
	return uuid.NewSHA1(namespace, []byte(canonical(atoms))).String()
}

func canonical(atoms []any) string {
	var b strings.Builder
	for i, a := range atoms {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		switch v := a.(type) {
		case nil:
			b.WriteString("null")
		case string:
			b.WriteString(strconv.Quote(v))
		case *string:
			if v == nil {
				b.WriteString("null")
			} else {
				b.WriteString(strconv.Quote(*v))
			}
		case int:
			b.WriteString(strconv.Itoa(v))
		case int64:
			b.WriteString(strconv.FormatInt(v, 10))
		case float64:
			b.WriteString(formatFloat(v))
		case *float64:
			if v == nil {
				b.WriteString("null")
			} else {
				b.WriteString(formatFloat(*v))
			}
		case bool:
			b.WriteString(strconv.FormatBool(v))
		default:
			fmt.Fprintf(&b, "%v", v)
		}
	}
	return b.String()
}

// formatFloat keeps integral floats distinct from ints so that 1 and 1.0
// hash differently.
func formatFloat(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

var (
	mu     sync.RWMutex
	source = uuid.NewString
)

// Random returns a fresh id from the current random source.
func Random() string {
	mu.RLock()
	fn := source
	mu.RUnlock()
	return fn()
}

// SetRandomSource replaces the random source and returns a function that
// restores the previous one.
func SetRandomSource(fn func() string) (restore func()) {
	mu.Lock()
	prev := source
	source = fn
	mu.Unlock()
	return func() {
		mu.Lock()
		source = prev
		mu.Unlock()
	}
}

// Sequence returns a deterministic source yielding prefix-0, prefix-1, ...
func Sequence(prefix string) func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1)-1)
	}
}

// Placeholder returns a source that always yields the same id. It breaks the
// distinctness guarantee and is only meant for diffing outputs.
func Placeholder(id string) func() string {
	return func() string { return id }
}
