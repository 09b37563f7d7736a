package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biscuit-cli/biscuit"
)

func TestParseBrowser(t *testing.T) {
	b, err := parseBrowser(" Firefox ")
	require.NoError(t, err)
	assert.Equal(t, biscuit.BrowserFirefox, b)

	b, err = parseBrowser("edge")
	require.NoError(t, err)
	assert.Equal(t, biscuit.BrowserEdge, b)

	_, err = parseBrowser("lynx")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := parseFormat("netscape")
	require.NoError(t, err)
	assert.Equal(t, biscuit.FormatNetscape, f)

	f, err = parseFormat("httpie")
	require.NoError(t, err)
	assert.Equal(t, biscuit.FormatHTTPieSession, f)

	_, err = parseFormat("yaml")
	assert.Error(t, err)
}

func TestParseHosts(t *testing.T) {
	hosts, err := parseHosts([]string{"example.com", "https://www.example.com/path?q=1", " ", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com", "www.example.com"}, hosts)

	_, err = parseHosts([]string{"https://"})
	assert.Error(t, err)
}

func TestWrappedCommandFor(t *testing.T) {
	w, err := wrappedCommandFor("curl")
	require.NoError(t, err)
	assert.Equal(t, "-b", w.cookieFlag)
	assert.Equal(t, biscuit.FormatNetscape, w.format)

	w, err = wrappedCommandFor("http")
	require.NoError(t, err)
	assert.Equal(t, "--session", w.cookieFlag)
	assert.Equal(t, biscuit.FormatHTTPieSession, w.format)

	w, err = wrappedCommandFor("httpie")
	require.NoError(t, err)
	assert.Equal(t, "https", w.binary)

	_, err = wrappedCommandFor("rsync")
	assert.Error(t, err)
}
