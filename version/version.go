package version

import (
	"fmt"
	"strings"
)

const (
	appMajor uint = 0
	appMinor uint = 1
	appPatch uint = 0
)

// appBuild is build metadata appended to the version. It is set at build
// time with '-ldflags "-X github.com/FranklinWaller/Rutile/version.appBuild=foo"'
// and is ignored unless it only holds letters, digits and dashes.
var appBuild string

// Version returns the application version as a semantic version string
func Version() string {
	version := fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
	if isValidBuild(appBuild) {
		version += "-" + appBuild
	}
	return version
}

func isValidBuild(build string) bool {
	if build == "" {
		return false
	}
	return strings.IndexFunc(build, func(r rune) bool {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		return !isLetter && !isDigit && r != '-'
	}) == -1
}
