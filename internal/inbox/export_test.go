package inbox

import "time"

// SetClock replaces the clock a MemoryStore uses to drop expired items.
func SetClock(s *MemoryStore, now func() time.Time) { s.now = now }
