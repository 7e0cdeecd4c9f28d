// Package guard switches the process into test mode as soon as it is
// imported, before any runtime component reads the environment.
package guard

import (
	"os"
	"sync"
)

// EnvTestMode is the variable consulted by app.InTestMode.
const EnvTestMode = "ARBOR_TEST_MODE"

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv(EnvTestMode) == "" {
			_ = os.Setenv(EnvTestMode, "1")
		}
	})
}
