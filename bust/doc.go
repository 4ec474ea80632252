// Package bust adds cache busting markers to asset references of stylesheets.
//
// Rewriter looks at url() tokens of @import parameters and of declarations
// whose property is in the configured set. Every local reference is resolved
// to a file and gets a marker:
//
//   - mtime: modification time of the file in milliseconds, hexadecimal,
//     appended to the query as ParamName + marker ("a.png?v18e5c1b2f35")
//   - checksum: hex digest of the file content, appended the same way;
//     digests are memoized in Cache per (path, algorithm)
//   - custom: CustomFunc result replaces the reference path, query and
//     fragment are kept
//
// # Resolution
//
// Root relative references ("/img/a.png") are resolved against ImagesPath.
// Document relative ones are resolved against CSSPath when set, otherwise
// against directory of the stylesheet.
//
// # Left untouched
//
// Remote, protocol relative and data references are never looked at. Missing
// assets and references which could not be parsed are reported to
// DiagnosticSink and logged, their text stays as it was.
package bust
