package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// PlatformProbe is a per-OS-family override of how a target is detected.
type PlatformProbe struct {
	Command        string `json:"command" yaml:"command"`
	VersionCommand string `json:"version_command" yaml:"version_command"`
}

// SoftwareTarget describes one piece of software the engine should look
// for. Command is the default executable name probed via the platform's
// lookup command; Detection entries, keyed by OS family (linux, darwin,
// windows), override it with explicit commands.
type SoftwareTarget struct {
	Name      string                   `json:"name" yaml:"name"`
	Command   string                   `json:"command,omitempty" yaml:"command,omitempty"`
	Family    string                   `json:"family" yaml:"family"`
	Vendor    string                   `json:"vendor" yaml:"vendor"`
	Detection map[string]PlatformProbe `json:"detection,omitempty" yaml:"detection,omitempty"`
}

// targetsDocument is the on-disk shape of the catalog.
type targetsDocument struct {
	SoftwareTargets []SoftwareTarget `json:"software_targets" yaml:"software_targets"`
}

// LoadTargets reads the software-target catalog from path. JSON is the
// default; .yaml/.yml files are parsed as YAML. A missing or unparseable
// document is logged and yields zero targets — the scan still runs and
// reports system info. Declared order is preserved; it fixes the order of
// the report's software inventory.
func LoadTargets(path string, log *zap.Logger) []SoftwareTarget {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("software target catalog not readable, scanning with zero targets",
			zap.String("path", path), zap.Error(err))
		return nil
	}

	var doc targetsDocument
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		log.Warn("software target catalog unparseable, scanning with zero targets",
			zap.String("path", path), zap.Error(err))
		return nil
	}

	for i, t := range doc.SoftwareTargets {
		if t.Name == "" {
			doc.SoftwareTargets[i].Name = "Unknown"
		}
		if err := doc.SoftwareTargets[i].Validate(); err != nil {
			log.Warn("target will always be reported absent", zap.Error(err))
		}
		warnIfMutating(doc.SoftwareTargets[i], log)
	}

	log.Info("software target catalog loaded",
		zap.String("path", path), zap.Int("targets", len(doc.SoftwareTargets)))
	return doc.SoftwareTargets
}

// Validate reports targets that can never be detected on any platform.
func (t SoftwareTarget) Validate() error {
	if t.Command != "" {
		return nil
	}
	for _, p := range t.Detection {
		if p.Command != "" {
			return nil
		}
	}
	return fmt.Errorf("target %q has no detection command", t.Name)
}
