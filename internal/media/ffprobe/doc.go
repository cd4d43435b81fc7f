// Package ffprobe provides a typed wrapper around ffprobe JSON output. The
// assembly decoder uses it to reject staged files that carry no audio
// stream before spending an ffmpeg decode on them.
package ffprobe
