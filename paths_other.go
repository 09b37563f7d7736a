//go:build !darwin && !linux && !windows

package biscuit

// No known default install locations; explicit paths still work.

func chromiumUserDataDirs(Browser) []string { return nil }

func firefoxRoots() []string { return nil }
