package state

import (
	"time"

	"apx/common"
)

// newLocalEnv creates a new LocalEnv instance with default values, the rest is
// filled in when configuration is loaded.
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start:   time.Now(),
		Modules: NewModuleCache(common.ResolvePolicyOnce),
	}
}
