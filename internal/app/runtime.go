package app

import (
	"os"
	"sync"
)

const testModeEnv = "INVOICEIQ_TEST_MODE"

var inTestMode = sync.OnceValue(func() bool {
	return os.Getenv(testModeEnv) == "1"
})

// InTestMode reports whether the application should skip runtime side effects.
// The INVOICEIQ_TEST_MODE flag is read once at first use.
func InTestMode() bool {
	return inTestMode()
}
