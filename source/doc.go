// Package source defines the [Source] interface that supplies raw key material
// to keycycle pools, and provides several implementations:
//
//   - [Map] and [Env]: entries named ENV_<POOL>_KEY<n>, from a map or from the
//     process environment.
//   - [File]: a YAML document listing keys per pool.
//   - [SQLite]: a table of keys backed by a SQLite database.
//   - [Chain]: the first source that yields keys wins.
//
// A Redis-backed source lives in the source/redis module.
//
// Sources only read credentials. Usage counters and failure flags are never
// written back.
package source
