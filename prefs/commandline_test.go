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

package prefs_test

import (
	"testing"

	"github.com/jetsetilly/dosframe/prefs"
	"github.com/jetsetilly/dosframe/test"
)

func TestCommandLineParsing(t *testing.T) {
	test.ExpectEquality(t, prefs.SizeCommandLineStack(), 0)
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "")

	prefs.PushCommandLineStack("display.tier::basic")
	test.ExpectEquality(t, prefs.SizeCommandLineStack(), 1)
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "display.tier::basic")
	test.ExpectEquality(t, prefs.SizeCommandLineStack(), 0)

	// surrounding space is removed from keys and values
	prefs.PushCommandLineStack("  display.tier ::  stepped ")
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "display.tier::stepped")

	// unused entries are returned in key order
	prefs.PushCommandLineStack("display.tier::shader; display.aspectRatio::1.6")
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "display.aspectRatio::1.6; display.tier::shader")

	// entries without a double colon are ignored
	prefs.PushCommandLineStack("display.tier")
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "")
	prefs.PushCommandLineStack("display.tier;display.shader::crt;;")
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "display.shader::crt")
}

func TestCommandLineConsumption(t *testing.T) {
	ok, _ := prefs.GetCommandLinePref("display.tier")
	test.ExpectFailure(t, ok)

	prefs.PushCommandLineStack("display.tier::basic; display.maxSupersampling::2")

	ok, v := prefs.GetCommandLinePref("display.tier")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, v, "basic")

	// a value can only be consumed once
	ok, _ = prefs.GetCommandLinePref("display.tier")
	test.ExpectFailure(t, ok)

	test.ExpectEquality(t, prefs.PopCommandLineStack(), "display.maxSupersampling::2")
}

func TestCommandLineGroups(t *testing.T) {
	prefs.PushCommandLineStack("display.tier::basic")
	prefs.PushCommandLineStack("display.shader::ripple")
	test.ExpectEquality(t, prefs.SizeCommandLineStack(), 2)

	// only the most recent group is consulted
	ok, _ := prefs.GetCommandLinePref("display.tier")
	test.ExpectFailure(t, ok)
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "display.shader::ripple")

	ok, v := prefs.GetCommandLinePref("display.tier")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, v, "basic")
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "")
}
