//go:build darwin

package biscuit

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// chromiumKeysForTarget reads the Safe Storage password from the login
// keychain and derives the v10 AES-CBC key from it. macOS has no v11 scheme.
func chromiumKeysForTarget(vendor chromiumVendor, _ BrowserTarget, timeout time.Duration) chromiumKeySet {
	password, err := macosReadKeychainPassword(timeout, vendor.safeStorageService, vendor.safeStorageAccount)
	if err != nil {
		return chromiumKeySet{err: fmt.Errorf("%w: keychain read failed: %v", ErrKeyUnavailable, err)}
	}
	password = strings.TrimSpace(password)
	if password == "" {
		return chromiumKeySet{err: fmt.Errorf("%w: keychain returned an empty %s password", ErrKeyUnavailable, vendor.safeStorageService)}
	}

	v10 := deriveCBCKey(password, chromiumPBKDF2IterationsMacOS)
	return chromiumKeySet{v10: &v10}
}

func macosReadKeychainPassword(timeout time.Duration, service string, account string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	stdout, stderr, err := execCapture(ctx, "security", []string{
		"find-generic-password",
		"-w",
		"-a", account,
		"-s", service,
	})
	if err != nil {
		if stderr != "" {
			return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr))
		}
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}
