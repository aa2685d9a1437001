// Package curseforge provides an HTTP client for the CurseForge addon API.
//
// # Overview
//
// The client resolves project ids to [catalog.Project] records and their
// file lists, implementing [catalog.Catalog] for the pack engine.
//
// # Usage
//
//	client := curseforge.NewClient(backend, 24*time.Hour, curseforge.Options{})
//
//	p, err := client.GetProject(ctx, 238222, false)
//	files, err := client.GetFiles(ctx, 238222, false)
//
// # Caching
//
// Responses are cached under the "curseforge" namespace of the configured
// [cache.Cache]. Pass refresh=true to bypass the cache; the fresh response
// replaces the cached one.
//
// # Errors
//
// A 404 maps to [integrations.ErrNotFound]; everything else that keeps the
// catalog from answering maps to [integrations.ErrNetwork]. Both are
// wrapped with the CATALOG_UNAVAILABLE code (NOT_FOUND for 404s).
package curseforge
