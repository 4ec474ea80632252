package state

import (
	"time"

	"cssbust/bust"
)

// newLocalEnv creates a new LocalEnv instance with default values. Checksum
// cache lives as long as the program so every document of a run shares it.
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
		Cache: bust.NewCache(),
	}
}
