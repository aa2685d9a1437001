// Package integrations provides the HTTP plumbing shared by catalog clients.
//
// # Overview
//
// Each remote catalog has its own subpackage built on [Client]:
//
//   - [curseforge]: the CurseForge addon API
//
// # Client Pattern
//
// Catalog clients embed [Client] and follow the same shape:
//
//	client := curseforge.NewClient(backend, 24*time.Hour, curseforge.Options{})
//	p, err := client.GetProject(ctx, 238222, false) // false = use cache
//
// [Client] handles:
//   - HTTP requests with retry and exponential backoff
//   - Response caching through a [cache.Cache] backend with a per-catalog namespace
//   - Default request headers (user agent, API key)
//
// # Errors
//
// [ErrNotFound] is returned for 404 responses. [ErrNetwork] wraps transport
// failures and unexpected status codes; 5xx responses and connection errors
// are retried before they surface.
//
// [curseforge]: https://pkg.go.dev/github.com/matzehuels/mcbuilder/pkg/integrations/curseforge
package integrations
