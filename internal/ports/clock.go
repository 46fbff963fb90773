package ports

import "time"

// Clock supplies the current time. Injected so assignment timestamps and
// lifecycle transitions are deterministic in tests.
type Clock interface {
	Now() time.Time
}
