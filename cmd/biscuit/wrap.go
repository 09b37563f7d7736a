package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/gookit/slog"
	"github.com/urfave/cli/v2"

	"github.com/biscuit-cli/biscuit"
)

// wrappedCommand describes how a supported HTTP client receives a cookie file.
type wrappedCommand struct {
	binary     string
	cookieFlag string
	format     biscuit.Format
}

func wrappedCommandFor(name string) (wrappedCommand, error) {
	switch name {
	case "curl":
		return wrappedCommand{binary: "curl", cookieFlag: "-b", format: biscuit.FormatNetscape}, nil
	case "wget":
		return wrappedCommand{binary: "wget", cookieFlag: "--load-cookies", format: biscuit.FormatNetscape}, nil
	case "http":
		return wrappedCommand{binary: "http", cookieFlag: "--session", format: biscuit.FormatHTTPieSession}, nil
	case "https", "httpie":
		return wrappedCommand{binary: "https", cookieFlag: "--session", format: biscuit.FormatHTTPieSession}, nil
	default:
		return wrappedCommand{}, fmt.Errorf("%q is not a supported command (curl, wget, http, https)", name)
	}
}

func wrapCommand() *cli.Command {
	return &cli.Command{
		Name:            "wrap",
		Usage:           "run an HTTP client with the imported cookies passed as a temporary file",
		ArgsUsage:       "COMMAND [ARGS...]",
		SkipFlagParsing: true,
		Action: func(c *cli.Context) error {
			if c.Args().Len() == 0 {
				return errors.New("wrap needs a command (curl, wget, http, https)")
			}
			wrapped, err := wrappedCommandFor(c.Args().First())
			if err != nil {
				return err
			}

			res, err := gatherCookies(c, nil)
			if err != nil {
				return err
			}
			reportDiagnostics(res)

			var buf bytes.Buffer
			if err := biscuit.Write(&buf, wrapped.format, res.Cookies); err != nil {
				return err
			}

			code, err := runWrapped(wrapped, buf.Bytes(), c.Args().Tail())
			if err != nil {
				return err
			}
			if code != 0 {
				return cli.Exit("", code)
			}
			return nil
		},
	}
}

// runWrapped writes the serialized cookies to a temp file, spawns the client
// pointing at it, and reports the child's exit code. The file is removed when
// the child exits.
func runWrapped(wrapped wrappedCommand, cookies []byte, forwarded []string) (int, error) {
	tmp, err := os.CreateTemp("", "biscuit-cookies-*")
	if err != nil {
		return 0, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(cookies); err != nil {
		_ = tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}

	args := append([]string{wrapped.cookieFlag, tmp.Name()}, forwarded...)
	slog.Debugf("running %s %v", wrapped.binary, args)

	cmd := exec.Command(wrapped.binary, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err = cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr):
		if exitErr.ExitCode() < 0 {
			return 0, fmt.Errorf("%s was killed by a signal", wrapped.binary)
		}
		return exitErr.ExitCode(), nil
	default:
		return 0, err
	}
}
