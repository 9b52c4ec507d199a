// Package secretstore provides storage backends for the Personio API client
// secret.
//
// Three backends cover the usual deployment tradeoffs:
//   - File: local filesystem with atomic writes and 0600 permissions
//   - Env: read-only environment variable (secret managed externally)
//   - Keyring: OS-native credential storage (macOS Keychain, Windows
//     Credential Manager, Linux Secret Service)
//
// Extraction runs only read the secret; `auth configure` writes it, which
// requires a writable backend (file or keyring).
package secretstore
