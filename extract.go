package biscuit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const defaultHelperTimeout = 3 * time.Second

// Extract resolves, reads, decrypts and filters cookies from the requested
// sources in one pass. Key material is derived fresh for the pass and
// discarded with it.
//
// Failures are accumulated rather than propagated: a failed row degrades its
// source, a failed source degrades the result. Extract returns a non-nil
// error only when not a single source could be read, wrapping every
// source-level failure so callers can inspect them with errors.Is.
func Extract(ctx context.Context, req Request) (Result, error) {
	if len(req.Sources) == 0 {
		return Result{}, errors.New("no cookie sources requested")
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultHelperTimeout
	}
	hosts := normalizeHosts(req.Hosts)

	var res Result
	succeeded := 0
	for _, spec := range req.Sources {
		targets, err := resolveTargets(spec)
		if err != nil {
			res.SourceErrors = append(res.SourceErrors, SourceError{
				Browser: spec.Browser,
				Profile: spec.Profile,
				Err:     err,
			})
			continue
		}

		for _, target := range targets {
			cookies, rowErrs, err := readTarget(ctx, target, req.BypassLock, timeout)
			res.RowErrors = append(res.RowErrors, rowErrs...)
			if err != nil {
				res.SourceErrors = append(res.SourceErrors, SourceError{
					Browser:   target.Browser,
					Profile:   target.Profile,
					StorePath: target.DatabasePath,
					Err:       err,
				})
				continue
			}
			succeeded++
			res.Cookies = append(res.Cookies, filterByHosts(cookies, hosts)...)
		}
	}

	if succeeded == 0 {
		errs := make([]error, 0, len(res.SourceErrors))
		for i := range res.SourceErrors {
			errs = append(errs, &res.SourceErrors[i])
		}
		return res, fmt.Errorf("no cookie source succeeded: %w", errors.Join(errs...))
	}
	return res, nil
}

func readTarget(ctx context.Context, target BrowserTarget, bypassLock bool, timeout time.Duration) ([]Cookie, []RowError, error) {
	if target.Browser.IsChromiumFamily() {
		keys := chromiumKeysForTarget(chromiumVendorForBrowser(target.Browser), target, timeout)
		return readChromiumTarget(ctx, target, keys, bypassLock)
	}
	return readFirefoxTarget(ctx, target, bypassLock)
}
