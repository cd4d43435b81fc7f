// Package preflight provides readiness checks for the filesystem paths,
// external binaries, and SMTP server mashup depends on.
//
// These checks run in two contexts:
//   - mashupd calls RunAll at startup and logs any failure before serving.
//   - The CLI "mashup status" command uses the individual check functions
//     to display health.
package preflight
