// Package assembly implements the mashup core: enumerate a staging
// directory, decode each recognized file, trim, concatenate and export one
// MP3.
//
// Concatenation order is the file name order reported by os.ReadDir, which
// is deterministic on every platform. Decoding may run in parallel; results
// are folded in enumeration order afterwards so parallelism never changes
// the output.
package assembly
