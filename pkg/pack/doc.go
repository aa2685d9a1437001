// Package pack models a mod pack: references to remote mod files, the
// resolved files they bind to, and the manifest that declares them.
//
// # Overview
//
// A [Reference] names one remote file by catalog source, project id and an
// optional file id. A [Source] turns references into [File] values, which
// fetch their catalog metadata exactly once and then answer questions about
// file names, download URLs, dependencies and available updates.
//
// A [Manifest] holds pack metadata and at most one [File] per project. It is
// safe for concurrent use: the resolver merges into it from many goroutines.
//
// # Persistence
//
// [Encode] and [Decode] map a manifest to the on-disk JSON form, which splits
// dependencies into common, client and server buckets. [Load] decodes a
// manifest file and fetches every entry before returning it; [Save] writes
// it atomically.
//
//	src := pack.NewCurseSource(client, "1.16.4")
//	m, err := pack.Load(ctx, "manifest.json", src, pack.LoadOptions{})
//	if errors.Is(err, pack.ErrNoManifest) {
//	    // run init first
//	}
package pack
