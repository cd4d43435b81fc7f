// Package textutil normalizes the user supplied names that end up on disk or
// in log output: uploaded file names, output names, and clip titles derived
// from downloaded file names.
package textutil
