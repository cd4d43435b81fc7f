// Package audio holds the PCM model of a mashup and the ffmpeg-backed codec
// that moves between it and files on disk.
//
// Fold is the accumulation step: it takes the running Merged value and one
// decode Result and returns the next Merged value, recording failures as
// skips instead of returning them. Decoders and encoders are interfaces so
// the assembler can be exercised without ffmpeg installed.
package audio
