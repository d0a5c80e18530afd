// Package randpayload generates random byte payloads for reproc's
// round-trip I/O property tests, adapted from the teacher's
// random/helpers.go RNG-seeding convention (CODECRAFTERS_RANDOM_SEED)
// down to just what Write/Read-loopback tests need: byte slices instead
// of word lists.
package randpayload

import (
	"math/rand"
	"os"
	"strconv"
	"time"
)

func newRNG() *rand.Rand {
	if seed := os.Getenv("CODECRAFTERS_RANDOM_SEED"); seed != "" {
		if seedInt, err := strconv.Atoi(seed); err == nil {
			return rand.New(rand.NewSource(int64(seedInt)))
		}
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Bytes returns n random bytes.
func Bytes(n int) []byte {
	rng := newRNG()
	buf := make([]byte, n)
	rng.Read(buf)
	return buf
}

// Sizes returns count random sizes in [min, max), useful for generating
// several differently-sized payloads in one property test.
func Sizes(min, max, count int) []int {
	rng := newRNG()
	sizes := make([]int, count)
	for i := range sizes {
		sizes[i] = rng.Intn(max-min) + min
	}
	return sizes
}
