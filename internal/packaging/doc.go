// Package packaging wraps an exported mashup in the zip archive that is
// attached to delivery emails.
package packaging
