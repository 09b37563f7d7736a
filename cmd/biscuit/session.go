package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/gookit/slog"

	"github.com/biscuit-cli/biscuit"
)

// runThrowawaySession launches the browser against a temporary profile, waits
// for the user to close it, and returns a source spec pointing at the cookies
// the session left behind. cleanup removes the profile and everything in it.
func runThrowawaySession(browser biscuit.Browser, urls []string) (biscuit.SourceSpec, func(), error) {
	dir, err := os.MkdirTemp("", "biscuit-session-")
	if err != nil {
		return biscuit.SourceSpec{}, nil, err
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	binary, args, spec, err := sessionInvocation(browser, dir, urls)
	if err != nil {
		cleanup()
		return biscuit.SourceSpec{}, nil, err
	}

	slog.Infof("opening a throwaway %s session; close the browser to continue", browser)

	cmd := exec.Command(binary, args...)
	if err := cmd.Run(); err != nil {
		cleanup()
		return biscuit.SourceSpec{}, nil, fmt.Errorf("failed to run %s: %w", binary, err)
	}

	return spec, cleanup, nil
}

func sessionInvocation(browser biscuit.Browser, profileDir string, urls []string) (string, []string, biscuit.SourceSpec, error) {
	if browser == biscuit.BrowserFirefox {
		args := append([]string{"-no-remote", "-profile", profileDir, "-new-instance"}, urls...)
		spec := biscuit.SourceSpec{
			Browser:      browser,
			DatabasePath: filepath.Join(profileDir, "cookies.sqlite"),
		}
		return "firefox", args, spec, nil
	}

	binary, err := chromiumSessionBinary(browser)
	if err != nil {
		return "", nil, biscuit.SourceSpec{}, err
	}
	args := append([]string{"--new-window", "--user-data-dir=" + profileDir}, urls...)
	spec := biscuit.SourceSpec{
		Browser: browser,
		Profile: filepath.Join(profileDir, "Default"),
	}
	return binary, args, spec, nil
}

func chromiumSessionBinary(browser biscuit.Browser) (string, error) {
	switch browser {
	case biscuit.BrowserChrome:
		return "google-chrome", nil
	case biscuit.BrowserChromium:
		return "chromium", nil
	case biscuit.BrowserEdge:
		return "microsoft-edge", nil
	case biscuit.BrowserBrave:
		return "brave-browser", nil
	case biscuit.BrowserVivaldi:
		return "vivaldi", nil
	case biscuit.BrowserOpera:
		return "opera", nil
	default:
		return "", fmt.Errorf("session mode does not support %q", browser)
	}
}
