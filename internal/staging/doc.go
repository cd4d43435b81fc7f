// Package staging owns the scratch directories a run reads from and writes
// to. Open prepares and clears them, StageUploads fills the staging side
// with caller supplied files, and CleanStale reclaims per-run directories
// left behind by earlier runs.
package staging
