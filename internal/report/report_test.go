package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apatole-r7/fingerprint-agent/internal/config"
	"github.com/apatole-r7/fingerprint-agent/internal/evidence"
	"github.com/apatole-r7/fingerprint-agent/internal/probe"
)

func sampleDetections() []probe.Detection {
	present := func(name string) probe.Detection {
		return probe.Detection{
			Target:  config.SoftwareTarget{Name: name},
			Present: true,
			Record: &probe.SoftwareRecord{
				ProductName:   name,
				VersionNumber: "1.0.0",
				Evidence: probe.SoftwareEvidence{
					Detection: evidence.Evidence{CommandRun: "command -v " + name, RawOutput: "/usr/bin/" + name, Succeeded: true},
				},
			},
		}
	}
	absent := func(name string) probe.Detection {
		return probe.Detection{
			Target:   config.SoftwareTarget{Name: name},
			Evidence: evidence.Evidence{CommandRun: "command -v " + name, Succeeded: false},
		}
	}
	return []probe.Detection{
		present("git"), absent("ghost"), present("docker"), absent("phantom"), present("python3"),
	}
}

func TestAssemble_OmitsAbsentPreservesOrder(t *testing.T) {
	rep := Assemble(Metadata{AgentID: "x"}, probe.SystemInfo{}, sampleDetections())

	want := []string{"git", "docker", "python3"}
	if len(rep.SoftwareInventory) != len(want) {
		t.Fatalf("inventory length = %d, want %d", len(rep.SoftwareInventory), len(want))
	}
	for i, name := range want {
		if rep.SoftwareInventory[i].ProductName != name {
			t.Errorf("inventory[%d] = %q, want %q", i, rep.SoftwareInventory[i].ProductName, name)
		}
	}
}

func TestAssemble_EmptyDetectionsYieldsEmptyArray(t *testing.T) {
	rep := Assemble(Metadata{}, probe.SystemInfo{}, nil)
	if rep.SoftwareInventory == nil {
		t.Fatal("inventory should be an empty array, not null")
	}

	data, err := rep.Encode(false)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if string(raw["software_inventory"]) != "[]" {
		t.Errorf("software_inventory = %s, want []", raw["software_inventory"])
	}
}

func TestEncode_SchemaFieldNames(t *testing.T) {
	rep := Assemble(
		Metadata{AgentID: "abc", Timestamp: "2026-08-30T10:00:00Z", ScanType: "local", TargetHost: "box"},
		probe.SystemInfo{OS: "Ubuntu", Evidence: map[string]evidence.Evidence{}},
		sampleDetections(),
	)

	data, err := rep.Encode(true)
	if err != nil {
		t.Fatal(err)
	}

	var doc struct {
		AgentMetadata map[string]any `json:"agent_metadata"`
		SystemInfo    map[string]any `json:"system_info"`
		Software      []map[string]any `json:"software_inventory"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.AgentMetadata["scan_type"] != "local" {
		t.Errorf("agent_metadata.scan_type missing: %v", doc.AgentMetadata)
	}
	for _, key := range []string{"os", "version", "kernel", "cpu", "architecture", "hostname", "cpu_count", "memory_gb", "evidence"} {
		if _, ok := doc.SystemInfo[key]; !ok {
			t.Errorf("system_info missing key %q", key)
		}
	}
	entry := doc.Software[0]
	for _, key := range []string{"productName", "versionNumber", "architecture", "productFamily", "vendor", "installPath", "evidence"} {
		if _, ok := entry[key]; !ok {
			t.Errorf("software entry missing key %q", key)
		}
	}
	ev := entry["evidence"].(map[string]any)["detection"].(map[string]any)
	for _, key := range []string{"command_run", "raw_output", "succeeded"} {
		if _, ok := ev[key]; !ok {
			t.Errorf("evidence missing key %q", key)
		}
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	rep := Assemble(Metadata{AgentID: "abc"}, probe.SystemInfo{OS: "Ubuntu"}, sampleDetections())
	path := filepath.Join(t.TempDir(), "out.json")

	if err := rep.Write(path, true); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var back Report
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("written report not valid JSON: %v", err)
	}
	if back.SystemInfo.OS != "Ubuntu" || len(back.SoftwareInventory) != 3 {
		t.Errorf("round trip mismatch: %+v", back)
	}
}

func TestTimestampAndDefaultFilename(t *testing.T) {
	ts := Timestamp(time.Date(2026, 8, 30, 10, 30, 0, 0, time.UTC))
	if ts != "2026-08-30T10:30:00Z" {
		t.Errorf("timestamp = %q", ts)
	}
	name := DefaultFilename(ts)
	if name != "fingerprint_2026-08-30T10-30-00Z.json" {
		t.Errorf("filename = %q", name)
	}
}

func TestNewScanID_Unique(t *testing.T) {
	if NewScanID() == NewScanID() {
		t.Error("scan IDs should be unique")
	}
}
