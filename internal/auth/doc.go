// Package auth provides bearer token acquisition and caching for the
// Personio API.
//
// Personio's token exchange deviates from standard OAuth2 in two ways that
// require custom handling:
//   - The exchange endpoint takes only client_id and client_secret (no
//     grant_type, scopes are accepted but unused)
//   - The token is returned nested at data.token instead of the standard
//     top-level access_token field
//
// # Provider
//
// Provider caches one bearer token per credential set and refreshes it on
// demand. It implements oauth2.TokenSource, so it plugs directly into
// oauth2.Transport for outbound API calls:
//
//	provider, err := auth.NewProvider(auth.Credentials{ClientID: id, ClientSecret: secret})
//	client := &http.Client{Transport: &oauth2.Transport{Source: provider}}
//
// # Registry
//
// Registry hands out one Provider per credential set so that all extraction
// streams in a process share a single token fetch:
//
//	provider, err := registry.Provider(auth.ProviderConfig{Credentials: creds})
package auth
