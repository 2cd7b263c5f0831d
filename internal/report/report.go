// Package report assembles and serializes the scan report.
//
// Schema note: of the two field layouts seen in the wild for this report,
// this implementation uses agent_metadata / system_info /
// software_inventory, with camelCase keys inside each software entry.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/apatole-r7/fingerprint-agent/internal/probe"
)

// Metadata identifies one scan: who ran it, against what, when, how long.
type Metadata struct {
	AgentID        string `json:"agent_id"`
	Timestamp      string `json:"timestamp"`
	ScanType       string `json:"scan_type"`
	TargetHost     string `json:"target_host"`
	TargetUser     string `json:"target_user,omitempty"`
	AgentVersion   string `json:"agent_version"`
	ScanDurationMs int64  `json:"scan_duration_ms"`
	TargetsLoaded  int    `json:"targets_loaded"`
}

// Report is the single write-once output artifact of a scan.
type Report struct {
	AgentMetadata     Metadata               `json:"agent_metadata"`
	SystemInfo        probe.SystemInfo       `json:"system_info"`
	SoftwareInventory []probe.SoftwareRecord `json:"software_inventory"`
}

// NewScanID returns a unique identifier for one scan invocation.
func NewScanID() string {
	return uuid.NewString()
}

// Timestamp formats t for report metadata: UTC, second precision.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// Assemble builds the report from probe outputs. Absent detections are
// omitted from the inventory; present ones keep their declared target
// order. Pure function, no I/O and no clock reads.
func Assemble(meta Metadata, system probe.SystemInfo, detections []probe.Detection) *Report {
	inventory := make([]probe.SoftwareRecord, 0, len(detections))
	for _, d := range detections {
		if d.Present {
			inventory = append(inventory, *d.Record)
		}
	}
	return &Report{
		AgentMetadata:     meta,
		SystemInfo:        system,
		SoftwareInventory: inventory,
	}
}

// Encode renders the report as JSON.
func (r *Report) Encode(pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(r, "", "  ")
	}
	return json.Marshal(r)
}

// Write serializes the report to path in one shot: the document is staged
// in a temp file and renamed into place so a failed scan never leaves a
// truncated report behind.
func (r *Report) Write(path string, pretty bool) error {
	data, err := r.Encode(pretty)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".fingerprint-*.json")
	if err != nil {
		return fmt.Errorf("stage report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("place report: %w", err)
	}
	return nil
}

// DefaultFilename derives an output path from the scan timestamp, matching
// the fingerprint_<timestamp>.json convention.
func DefaultFilename(timestamp string) string {
	return "fingerprint_" + strings.ReplaceAll(timestamp, ":", "-") + ".json"
}
