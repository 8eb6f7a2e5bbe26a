// Package npm provides an HTTP client for the npm registry API.
//
// # Overview
//
// This package fetches package metadata from the npm registry
// (https://registry.npmjs.org) or any mirror speaking the same protocol,
// such as Verdaccio or a private Artifactory endpoint.
//
// # Usage
//
//	client, err := npm.NewClient("") // default registry
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pkg, err := client.FetchPackage(ctx, "express")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(pkg.Name, pkg.DistTags["latest"])
//
// # PackageInfo
//
// [Client.FetchPackage] returns a [PackageInfo] containing:
//
//   - Name: Package name as reported by the registry
//   - Versions: Every published version, sorted lexically
//   - DistTags: Tag to version map, including "latest"
//
// Requests ask for the abbreviated install metadata, which is much smaller
// than the full document. Scoped names are path-escaped ("@types%2Fnode").
package npm
