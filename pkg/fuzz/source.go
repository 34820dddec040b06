package fuzz

import (
	"math/rand"
	"time"

	"github.com/mellowCS/SMB-Fuzzer/pkg/smb/types"
)

// Source provides uniform random integers and bytes. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
	Read(p []byte) (int, error)
}

// NewSource returns a seeded source. A zero seed uses the current time.
func NewSource(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func randomBytes(src Source, n int) []byte {
	buf := make([]byte, n)
	src.Read(buf)
	return buf
}

// RandomizeFields replaces every field value with random bytes. Fixed
// fields keep their width; variable fields get a random length below limit.
func RandomizeFields(src Source, fields []types.Field, limit int) []types.Field {
	out := make([]types.Field, len(fields))
	for i, f := range fields {
		n := f.Width
		if !f.Fixed() {
			n = src.Intn(limit)
		}
		out[i] = types.Field{Name: f.Name, Width: f.Width, Value: randomBytes(src, n)}
	}
	return out
}

// ScrambleFields replaces every field, fixed or not, with random bytes of a
// random length below limit
func ScrambleFields(src Source, fields []types.Field, limit int) []types.Field {
	out := make([]types.Field, len(fields))
	for i, f := range fields {
		out[i] = types.Field{Name: f.Name, Width: f.Width, Value: randomBytes(src, src.Intn(limit))}
	}
	return out
}
