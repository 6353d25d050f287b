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

// Package modalflag wraps the flag package of the standard library with
// support for program modes. A mode is a command line argument that selects
// what the program does, in the same way that "build" and "test" select what
// the go command does. Each mode has its own set of flags and can have its
// own sub-modes.
//
// The arguments are given to NewArgs() and each layer is processed by a call
// to Parse() with no arguments:
//
//	md := modalflag.Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	md.AddSubModes("VIEW", "SNAPSHOT")
//	p, err := md.Parse()
//
// The first sub-mode is the default. Mode() returns the selected mode in
// upper case. Flags for the selected mode are added after a call to
// NewMode() and the next call to Parse() processes them, along with any
// further sub-modes:
//
//	switch md.Mode() {
//	case "SNAPSHOT":
//		md.NewMode()
//		output := md.AddString("o", "", "output file")
//		p, err := md.Parse()
//		...
//	}
//
// Help is printed automatically to the Output writer when the -help flag is
// encountered, in which case Parse() returns ParseHelp.
package modalflag
