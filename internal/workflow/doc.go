// Package workflow coordinates one mashup run from a validated request to a
// delivered file.
//
// A run moves through fixed stages: the workspace is opened and cleared,
// inputs are staged (yt-dlp search or caller uploads), the assembly engine
// builds the MP3, and when a recipient is present the MP3 is zipped and
// emailed. Each stage is tagged on the context so log lines carry run_id and
// stage. History and metrics are recorded on a best-effort basis.
package workflow
