// Package buildinfo exposes version metadata for vmrelease. Values are set
// at build time via -ldflags; the cli package variables are honored as a
// fallback for older build scripts.
package buildinfo

import (
	"strings"

	"github.com/flarebyte/vmrelease/cli"
)

var (
	// Version is the release label of the tool itself.
	Version = "dev"
	// Commit is the VCS commit hash the tool was built from.
	Commit = ""
	// Date is the build time.
	Date = ""
	// BuiltBy identifies the builder.
	BuiltBy = ""
)

// Label returns the bare version, falling back to cli.Version, then "dev".
func Label() string {
	switch {
	case Version != "":
		return Version
	case cli.Version != "":
		return cli.Version
	}
	return "dev"
}

// Summary returns Label plus short commit and date when known, e.g.
// "1.2.0 (commit=abc1234, date=2026-02-09)".
func Summary() string {
	v := Label()
	d := Date
	if d == "" {
		d = cli.Date
	}
	var parts []string
	if Commit != "" {
		c := Commit
		if len(c) > 7 {
			c = c[:7]
		}
		parts = append(parts, "commit="+c)
	}
	if d != "" {
		parts = append(parts, "date="+d)
	}
	if len(parts) > 0 {
		v += " (" + strings.Join(parts, ", ") + ")"
	}
	return v
}
