// Package store implements the sandboxed file store backing the file server.
//
// Every client-supplied path is mapped onto a single root directory through
// the Resolver, which canonicalizes the path and verifies it never escapes
// the root before any filesystem call is made. The package is organized into
// focused files:
//   - resolver: path normalization and root confinement
//   - basic: upload, download, delete
//   - directory: listing, folder creation, recursive folder enumeration
//   - operations: move and copy with basename destination naming
//   - stats: storage usage accounting and health signal
//   - formats: upload extension allow-list by category
//
// Operations hold no locks across filesystem calls; consistency relies on
// the atomicity of the individual syscalls (rename, unlink, mkdir), so
// concurrent writers to the same path are last-writer-wins. All failures
// surface as the typed errors in errors.go rather than raw I/O errors.
package store
