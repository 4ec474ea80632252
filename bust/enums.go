package bust

// How cachebuster value is produced.
// ENUM(mtime, checksum, custom)
type StrategyKind int

// Reason a reference was left untouched.
// ENUM(unresolvable-asset, malformed-token)
type DiagnosticKind int
