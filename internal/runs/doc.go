// Package runs records mashup attempts in a SQLite database under the state
// directory so the CLI and web server can report recent history. Recording
// is best effort: a run never fails because history could not be written.
package runs
