// Command biscuit imports cookies from local browser profiles and hands them
// to HTTP tooling, either as a serialized file on stdout or by wrapping a
// curl/wget/HTTPie invocation.
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gookit/slog"
	"github.com/urfave/cli/v2"

	"github.com/biscuit-cli/biscuit"
)

func main() {
	slog.Configure(func(l *slog.SugaredLogger) {
		l.Output = os.Stderr
		l.Level = slog.WarnLevel
	})

	app := &cli.App{
		Name:  "biscuit",
		Usage: "import browser cookies for curl, wget and HTTPie",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "browser",
				Aliases: []string{"b"},
				Usage:   "browser to import cookies from (chrome, chromium, edge, brave, vivaldi, opera, firefox)",
				Value:   "firefox",
			},
			&cli.StringFlag{
				Name:    "cookie-db",
				Aliases: []string{"c"},
				Usage:   "explicit cookie database path (skips profile discovery)",
			},
			&cli.StringFlag{
				Name:  "profile",
				Usage: "profile name or directory",
			},
			&cli.BoolFlag{
				Name:  "bypass-lock",
				Usage: "read the database even while the browser holds its lock (may observe torn reads)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "timeout for OS keychain/keyring calls",
				Value: 3 * time.Second,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log per-row and per-source diagnostics",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				slog.SetLogLevel(slog.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			outputCommand(),
			wrapCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Errorf("%v", err)
		os.Exit(1)
	}
}

func outputCommand() *cli.Command {
	return &cli.Command{
		Name:      "output",
		Usage:     "write cookies to stdout in the selected format",
		ArgsUsage: "[HOSTS...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "output format (netscape, httpie-session)",
				Value:   string(biscuit.FormatNetscape),
			},
			&cli.BoolFlag{
				Name:  "session",
				Usage: "open a throwaway browser session and harvest its cookies on exit",
			},
			&cli.StringSliceFlag{
				Name:  "session-url",
				Usage: "URL to open in the throwaway session (repeatable)",
			},
		},
		Action: func(c *cli.Context) error {
			format, err := parseFormat(c.String("format"))
			if err != nil {
				return err
			}

			res, err := gatherCookies(c, c.Args().Slice())
			if err != nil {
				return err
			}
			reportDiagnostics(res)

			return biscuit.Write(os.Stdout, format, res.Cookies)
		},
	}
}

func gatherCookies(c *cli.Context, hostArgs []string) (biscuit.Result, error) {
	browser, err := parseBrowser(c.String("browser"))
	if err != nil {
		return biscuit.Result{}, err
	}
	hosts, err := parseHosts(hostArgs)
	if err != nil {
		return biscuit.Result{}, err
	}

	spec := biscuit.SourceSpec{
		Browser:      browser,
		DatabasePath: c.String("cookie-db"),
		Profile:      c.String("profile"),
	}

	if c.Bool("session") {
		sessionSpec, cleanup, err := runThrowawaySession(browser, c.StringSlice("session-url"))
		if err != nil {
			return biscuit.Result{}, err
		}
		defer cleanup()
		spec = sessionSpec
	}

	return biscuit.Extract(context.Background(), biscuit.Request{
		Sources:    []biscuit.SourceSpec{spec},
		Hosts:      hosts,
		BypassLock: c.Bool("bypass-lock"),
		Timeout:    c.Duration("timeout"),
	})
}

func reportDiagnostics(res biscuit.Result) {
	for i := range res.SourceErrors {
		slog.Warnf("source skipped: %v", &res.SourceErrors[i])
	}
	for i := range res.RowErrors {
		slog.Debugf("row skipped: %v", &res.RowErrors[i])
	}
	if n := len(res.RowErrors); n > 0 {
		slog.Warnf("%d cookie rows could not be decrypted (run with --verbose for details)", n)
	}
}

func parseBrowser(s string) (biscuit.Browser, error) {
	switch b := biscuit.Browser(strings.ToLower(strings.TrimSpace(s))); b {
	case biscuit.BrowserChrome, biscuit.BrowserChromium, biscuit.BrowserEdge,
		biscuit.BrowserBrave, biscuit.BrowserVivaldi, biscuit.BrowserOpera,
		biscuit.BrowserFirefox:
		return b, nil
	default:
		return "", fmt.Errorf("%q is not a supported browser (chrome, chromium, edge, brave, vivaldi, opera, firefox)", s)
	}
}

func parseFormat(s string) (biscuit.Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "netscape":
		return biscuit.FormatNetscape, nil
	case "httpie-session", "httpie":
		return biscuit.FormatHTTPieSession, nil
	default:
		return "", fmt.Errorf("%q is not a supported output format (netscape, httpie-session)", s)
	}
}

// parseHosts accepts bare hosts and full URLs.
func parseHosts(args []string) ([]string, error) {
	hosts := make([]string, 0, len(args))
	for _, a := range args {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if strings.Contains(a, "://") {
			u, err := url.Parse(a)
			if err != nil {
				return nil, fmt.Errorf("invalid host %q: %w", a, err)
			}
			if u.Hostname() == "" {
				return nil, fmt.Errorf("invalid host %q: no hostname", a)
			}
			hosts = append(hosts, u.Hostname())
			continue
		}
		hosts = append(hosts, a)
	}
	return hosts, nil
}
