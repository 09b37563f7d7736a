package biscuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainMatchesHost_DottedCoversBaseAndSubdomains(t *testing.T) {
	assert.True(t, domainMatchesHost(".example.com", "example.com"))
	assert.True(t, domainMatchesHost(".example.com", "www.example.com"))
	assert.True(t, domainMatchesHost(".example.com", "deep.sub.example.com"))
	assert.False(t, domainMatchesHost(".example.com", "notexample.com"))
	assert.False(t, domainMatchesHost(".example.com", "example.com.evil.org"))
}

func TestDomainMatchesHost_UndottedIsExact(t *testing.T) {
	assert.True(t, domainMatchesHost("example.com", "example.com"))
	assert.False(t, domainMatchesHost("example.com", "www.example.com"))
	assert.False(t, domainMatchesHost("example.com", "notexample.com"))
}

func TestDomainMatchesHost_NormalizesHost(t *testing.T) {
	assert.True(t, domainMatchesHost("example.com", "EXAMPLE.COM"))
	assert.True(t, domainMatchesHost(".example.com", "www.example.com."))
	assert.False(t, domainMatchesHost("", "example.com"))
	assert.False(t, domainMatchesHost("example.com", ""))
	assert.False(t, domainMatchesHost(".", "example.com"))
}

func TestFilterByHosts_EmptyHostListPassesThrough(t *testing.T) {
	cookies := []Cookie{
		{Domain: ".example.com", Name: "a"},
		{Domain: "other.net", Name: "b"},
	}
	got := filterByHosts(cookies, nil)
	assert.Equal(t, cookies, got)
	assert.Len(t, got, 2)
}

func TestFilterByHosts_KeepsOrderAndDuplicates(t *testing.T) {
	cookies := []Cookie{
		{Domain: ".example.com", Name: "first"},
		{Domain: "other.net", Name: "skipped"},
		{Domain: "example.com", Name: "second"},
		{Domain: ".example.com", Name: "first"}, // same record from another store
	}
	got := filterByHosts(cookies, []string{"example.com"})
	if assert.Len(t, got, 3) {
		assert.Equal(t, "first", got[0].Name)
		assert.Equal(t, "second", got[1].Name)
		assert.Equal(t, "first", got[2].Name)
	}
}

func TestNormalizeHosts_DropsEmpties(t *testing.T) {
	got := normalizeHosts([]string{" Example.COM. ", "", "  "})
	assert.Equal(t, []string{"example.com"}, got)
}
