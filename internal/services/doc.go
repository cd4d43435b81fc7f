// Package services defines shared utilities consumed by the mashup pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and stage names for logging.
//   - Sentinel error markers (validation, acquisition, decode, no audio,
//     delivery) plus Wrap and Failure, so callers can classify failures with
//     errors.Is and render a short user-facing message with UserMessage.
//
// Subpackages wrap the external command-line collaborators (yt-dlp).
package services
