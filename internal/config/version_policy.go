package config

import "strings"

// CurrentConfigVersion is the configVersion written by this release of the
// tool. Deploy files must name it explicitly.
const CurrentConfigVersion = "1"

// SupportedConfigVersions lists every configVersion Load accepts.
var SupportedConfigVersions = []string{CurrentConfigVersion}

// IsSupportedConfigVersion reports whether Load can read a deploy file
// declaring v.
func IsSupportedConfigVersion(v string) bool {
	for _, s := range SupportedConfigVersions {
		if v == s {
			return true
		}
	}
	return false
}

// SupportedConfigVersionsCSV renders SupportedConfigVersions for error
// messages.
func SupportedConfigVersionsCSV() string {
	return strings.Join(SupportedConfigVersions, ", ")
}
