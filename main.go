// fingerprint-agent — host and software inventory scanner.
//
// A single binary that fingerprints the machine it runs on, or a remote
// machine over SSH, and writes an evidence-annotated JSON report.
//
// Usage:
//
//	fingerprint-agent scan                                   # local scan
//	fingerprint-agent scan --mode remote --target admin@host # remote scan
//	fingerprint-agent scan --targets targets.json -o out.json
package main

import "github.com/apatole-r7/fingerprint-agent/cmd"

var version = "dev"

func main() {
	cmd.Execute(version)
}
