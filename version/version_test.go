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

package version_test

import (
	"testing"

	"github.com/jetsetilly/dosframe/test"
	"github.com/jetsetilly/dosframe/version"
)

func TestVersion(t *testing.T) {
	ver, rev, release := version.Version()
	test.ExpectInequality(t, ver, "")
	test.ExpectInequality(t, rev, "")

	// tests are never built with a release number
	test.ExpectFailure(t, release)
	test.ExpectEquality(t, version.ApplicationName, "DOSFrame")
}
