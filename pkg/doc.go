// Package pkg holds the libraries behind mcbuilder.
//
// # Overview
//
// mcbuilder turns a modpack manifest (a declared set of CurseForge mod
// references) into a resolved, version-pinned dependency closure, downloads
// the corresponding jars, and keeps the pack's mods folder in sync with the
// manifest. The packages are layered:
//
//  1. [catalog] - catalog metadata types and the Catalog interface
//  2. [integrations] - HTTP catalog clients (CurseForge) with response caching
//  3. [pack] - references, resolved files, the manifest and its JSON form
//  4. [deps] - the dependency resolver
//  5. [install] and [download] - artifact synchronization
//  6. [packager] and [render] - archives and dependency graphs
//
// Supporting packages: [cache], [config], [errors], [httputil], [lock],
// [observability] and [buildinfo].
//
// # Architecture
//
// The typical data flow of "mcbuilder add":
//
//	manifest.json
//	     ↓
//	[pack.Load] (decode + fetch every entry)
//	     ↓
//	[deps.Resolver] (expand required dependencies, merge into the manifest)
//	     ↓
//	[install.Installer] (download missing jars, reconcile the mods folder)
//	     ↓
//	[pack.Save]
//
// # Quick Start
//
//	client := curseforge.NewClient(cache.NewNullCache(), time.Hour, curseforge.Options{})
//	sources := func(target string) pack.Source {
//	    return pack.NewCurseSource(client, target)
//	}
//
//	m, _ := pack.Load(ctx, pack.Path(dir), sources, pack.LoadOptions{})
//	res := deps.NewResolver(sources(m.TargetVersion), deps.Options{}).
//	    Resolve(ctx, pack.NewReference(238222, 0), pack.Common)
//	m.Merge(res.Files...)
//
//	in := install.New(filepath.Join(dir, "mods"), download.NewHTTPDownloader(nil), 0, nil)
//	_, _ = in.Install(ctx, m, install.Options{})
//	_, _ = in.Reconcile(ctx, m)
//	_ = pack.Save(pack.Path(dir), m)
package pkg
