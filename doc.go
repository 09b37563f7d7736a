// Package biscuit extracts cookies from local browser profiles (Chromium-family
// and Firefox), decrypts values that are encrypted at rest, and serializes the
// result for consumption by HTTP tooling (curl, wget, HTTPie).
//
// The package reads browser state in place and never writes to a browser
// database. Reading may trigger OS keychain/keyring prompts on platforms where
// the Safe Storage password is guarded; it is intended for local tooling, not
// server contexts.
package biscuit
