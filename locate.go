package biscuit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	"github.com/tidwall/gjson"
)

// resolveTargets turns a source spec into concrete cookie stores. Pure path
// resolution: no database is opened here. ErrNotFound when nothing matches.
func resolveTargets(spec SourceSpec) ([]BrowserTarget, error) {
	switch {
	case spec.Browser.IsChromiumFamily():
		return chromiumResolveTargets(spec)
	case spec.Browser == BrowserFirefox:
		return firefoxResolveTargets(spec)
	default:
		return nil, fmt.Errorf("unsupported browser %q", spec.Browser)
	}
}

func chromiumResolveTargets(spec SourceSpec) ([]BrowserTarget, error) {
	if spec.DatabasePath != "" {
		return chromiumTargetFromDBPath(spec.Browser, spec.DatabasePath)
	}
	if spec.Profile != "" {
		return chromiumTargetsForProfile(spec.Browser, spec.Profile)
	}

	var out []BrowserTarget
	for _, root := range chromiumUserDataDirs(spec.Browser) {
		out = append(out, chromiumTargetsFromUserDataDir(spec.Browser, root)...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no %s profile with a cookie database", ErrNotFound, spec.Browser)
	}
	return out, nil
}

// chromiumTargetsFromUserDataDir enumerates profiles via the Local State
// profile.info_cache map, probing the Default profile when the file is
// missing or unparseable.
func chromiumTargetsFromUserDataDir(b Browser, userDataDir string) []BrowserTarget {
	stateBytes, err := os.ReadFile(filepath.Join(userDataDir, "Local State"))
	if err != nil {
		return chromiumTargetsForProfileDir(b, userDataDir, "Default", "Default")
	}

	infoCache := gjson.GetBytes(stateBytes, "profile.info_cache")
	if !infoCache.IsObject() {
		return chromiumTargetsForProfileDir(b, userDataDir, "Default", "Default")
	}

	var out []BrowserTarget
	infoCache.ForEach(func(profDir, info gjson.Result) bool {
		name := info.Get("name").String()
		if name == "" {
			name = profDir.String()
		}
		out = append(out, chromiumTargetsForProfileDir(b, userDataDir, profDir.String(), name)...)
		return true
	})
	return out
}

func chromiumTargetsForProfileDir(b Browser, userDataDir, profDir, profName string) []BrowserTarget {
	// Newer Chromium keeps the database under Network/, older directly in the
	// profile directory.
	candidates := []string{
		filepath.Join(userDataDir, profDir, "Network", "Cookies"),
		filepath.Join(userDataDir, profDir, "Cookies"),
	}
	var out []BrowserTarget
	for _, p := range candidates {
		if fileExists(p) {
			out = append(out, BrowserTarget{
				Browser:      b,
				Profile:      profName,
				DatabasePath: p,
				UserDataDir:  userDataDir,
			})
		}
	}
	return out
}

func chromiumTargetsForProfile(b Browser, profile string) ([]BrowserTarget, error) {
	profile = strings.TrimSpace(profile)

	// An existing directory is used as the profile directory itself.
	if fi, err := os.Stat(profile); err == nil && fi.IsDir() {
		out := chromiumTargetsForProfileDir(b, filepath.Dir(profile), filepath.Base(profile), filepath.Base(profile))
		if len(out) == 0 {
			return nil, fmt.Errorf("%w: no cookie database in %s", ErrNotFound, profile)
		}
		return out, nil
	}

	var out []BrowserTarget
	for _, root := range chromiumUserDataDirs(b) {
		out = append(out, chromiumTargetsForProfileDir(b, root, profile, profile)...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s profile %q", ErrNotFound, b, profile)
	}
	return out, nil
}

func chromiumTargetFromDBPath(b Browser, dbPath string) ([]BrowserTarget, error) {
	if !fileExists(dbPath) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, dbPath)
	}

	profDir := filepath.Dir(dbPath)
	if filepath.Base(profDir) == "Network" {
		profDir = filepath.Dir(profDir)
	}
	return []BrowserTarget{{
		Browser:      b,
		Profile:      filepath.Base(profDir),
		DatabasePath: dbPath,
		UserDataDir:  filepath.Dir(profDir),
	}}, nil
}

func firefoxResolveTargets(spec SourceSpec) ([]BrowserTarget, error) {
	if spec.DatabasePath != "" {
		if !fileExists(spec.DatabasePath) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, spec.DatabasePath)
		}
		return []BrowserTarget{{
			Browser:      BrowserFirefox,
			Profile:      filepath.Base(filepath.Dir(spec.DatabasePath)),
			DatabasePath: spec.DatabasePath,
		}}, nil
	}

	override := strings.TrimSpace(spec.Profile)
	if override != "" {
		if fi, err := os.Stat(override); err == nil && fi.IsDir() {
			dbPath := filepath.Join(override, "cookies.sqlite")
			if !fileExists(dbPath) {
				return nil, fmt.Errorf("%w: no cookies.sqlite in %s", ErrNotFound, override)
			}
			return []BrowserTarget{{
				Browser:      BrowserFirefox,
				Profile:      filepath.Base(override),
				DatabasePath: dbPath,
			}}, nil
		}
	}

	var out []BrowserTarget
	for _, root := range firefoxRoots() {
		out = append(out, firefoxTargetsFromProfilesINI(root, override)...)
	}
	if len(out) == 0 {
		if override != "" {
			return nil, fmt.Errorf("%w: Firefox profile %q", ErrNotFound, override)
		}
		return nil, fmt.Errorf("%w: no Firefox profile with a cookie database", ErrNotFound)
	}
	return out, nil
}

func firefoxTargetsFromProfilesINI(root, override string) []BrowserTarget {
	cfg, err := ini.Load(filepath.Join(root, "profiles.ini"))
	if err != nil {
		return nil
	}

	var out []BrowserTarget
	for _, secName := range cfg.SectionStrings() {
		if !strings.HasPrefix(secName, "Profile") {
			continue
		}
		sec := cfg.Section(secName)
		name := sec.Key("Name").String()
		pathStr := filepath.FromSlash(sec.Key("Path").String())
		if pathStr == "" {
			continue
		}
		if sec.Key("IsRelative").String() == "1" {
			pathStr = filepath.Join(root, pathStr)
		}
		dbPath := filepath.Join(pathStr, "cookies.sqlite")
		if !fileExists(dbPath) {
			continue
		}

		prof := name
		if prof == "" {
			prof = filepath.Base(pathStr)
		}
		if override != "" && prof != override && filepath.Base(pathStr) != override {
			continue
		}
		out = append(out, BrowserTarget{
			Browser:      BrowserFirefox,
			Profile:      prof,
			DatabasePath: dbPath,
		})
	}
	return out
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
