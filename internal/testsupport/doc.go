// Package testsupport offers helpers shared by package tests: throwaway
// configs rooted in t.TempDir, stub executables on PATH, a fake codec that
// stands in for ffmpeg, and a ready-to-use history store.
package testsupport
