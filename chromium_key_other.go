//go:build !darwin && !linux && !windows

package biscuit

import (
	"fmt"
	"time"
)

func chromiumKeysForTarget(_ chromiumVendor, _ BrowserTarget, _ time.Duration) chromiumKeySet {
	return chromiumKeySet{err: fmt.Errorf("%w: no key provider on this OS", ErrKeyUnavailable)}
}
