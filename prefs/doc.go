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

// Package prefs facilitates the storage of preference values on disk. Values
// are represented by the Bool, Int, Float, String and Generic types. Each
// value is added to a Disk instance with a key and the Disk is then used to
// load and save all the values in one operation.
//
// Changes to a value can be intercepted with the SetHookPre() and
// SetHookPost() functions. This is the preferred way of applying a changed
// preference to a running system.
//
// Values loaded from disk can be overridden for the duration of the program
// with the command line stack. See PushCommandLineStack().
package prefs

// DefaultPrefsFile is the name of the preferences file used by the
// application. It should be passed through resources.JoinPath() before use.
const DefaultPrefsFile = "preferences"
