package app

import (
	"os"
	"sync/atomic"

	"github.com/arbor-cms/arbor/internal/testing/guard"
)

var testMode atomic.Pointer[bool]

// InTestMode reports whether ARBOR_TEST_MODE=1 was set when first asked.
// Commands use it to return before opening connections or listeners.
func InTestMode() bool {
	if v := testMode.Load(); v != nil {
		return *v
	}
	on := os.Getenv(guard.EnvTestMode) == "1"
	testMode.CompareAndSwap(nil, &on)
	return *testMode.Load()
}
