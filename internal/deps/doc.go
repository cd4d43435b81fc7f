// Package deps reports whether the external binaries mashup shells out to
// (ffmpeg, ffprobe, yt-dlp) can be found, and which versions are installed.
package deps
