package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"mashup/internal/config"
)

const versionTimeout = 5 * time.Second

// Requirement defines an external binary mashup shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// VersionArg, when set, is passed to the binary to capture a version line.
	VersionArg string
	Optional   bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Path        string
	Version     string
	Detail      string
}

// Requirements lists the binaries the configured pipeline needs.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Assembly.FFmpegBinary,
			Description: "Decodes clips and encodes the MP3",
			VersionArg:  "-version",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Assembly.FFprobeBinary,
			Description: "Inspects clips before decoding",
			VersionArg:  "-version",
		},
		{
			Name:        "yt-dlp",
			Command:     cfg.Acquisition.Binary,
			Description: "Searches and downloads clips; not needed for uploads",
			VersionArg:  "--version",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
// Version probes honour ctx and are bounded by a short timeout.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = resolved
		if req.VersionArg != "" {
			status.Version = probeVersion(ctx, resolved, req.VersionArg)
		}
		results = append(results, status)
	}
	return results
}

// Missing returns the required dependencies that are unavailable.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}

func probeVersion(ctx context.Context, binary, arg string) string {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, binary, arg).Output()
	if err != nil {
		return ""
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text())
	}
	return ""
}
