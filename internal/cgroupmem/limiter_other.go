//go:build !linux

package cgroupmem

// Limiter is a no-op on non-Linux platforms: cgroups are Linux-specific,
// so Options.MemoryLimitBytes has no effect elsewhere.
type Limiter struct{}

func New(memoryLimitBytes int64) (*Limiter, error) { return nil, nil }

func (l *Limiter) AddProcess(pid int) error { return nil }

func (l *Limiter) WasOOMKilled() bool { return false }

func (l *Limiter) Close() {}
