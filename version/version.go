// This file is part of DOSFrame.
//
// DOSFrame is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// DOSFrame is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with DOSFrame.  If not, see <https://www.gnu.org/licenses/>.

package version

import (
	"fmt"
	"runtime/debug"
)

// ApplicationName is the name to use when referring to the application.
const ApplicationName = "DOSFrame"

// set by the linker when building a release
var number string

// the vcs revision, suffixed with "+dirty" if the working tree was modified
var revision string

// "unreleased" if built from a vcs checkout without a release number. "local"
// if there is no version information at all, as happens with "go run ."
var version string

// Version returns the version string, the revision string and whether this is
// a numbered release.
func Version() (string, string, bool) {
	return version, revision, number != "" && version == number
}

// readBuildInfo extracts the vcs settings from the build information
func readBuildInfo(info *debug.BuildInfo) (vcs bool, rev string, modified bool) {
	if info == nil {
		return false, "", false
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs":
			vcs = true
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	return vcs, rev, modified
}

func init() {
	info, _ := debug.ReadBuildInfo()
	vcs, rev, modified := readBuildInfo(info)

	switch {
	case rev == "":
		revision = "no revision information"
	case modified:
		revision = fmt.Sprintf("%s+dirty", rev)
	default:
		revision = rev
	}

	switch {
	case number != "":
		version = number
	case vcs:
		version = "unreleased"
	default:
		version = "local"
	}
}
