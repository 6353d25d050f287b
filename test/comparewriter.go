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

package test

import (
	"strings"
	"sync"
)

// CompareWriter captures output written to it so that it can be checked
// against an expected string. Output from the logger and the stats server is
// written from other goroutines so the writer is safe for concurrent use.
type CompareWriter struct {
	crit sync.Mutex
	buf  strings.Builder
}

// Write implements the io.Writer interface.
func (w *CompareWriter) Write(p []byte) (int, error) {
	w.crit.Lock()
	defer w.crit.Unlock()
	return w.buf.Write(p)
}

// Clear discards everything written so far.
func (w *CompareWriter) Clear() {
	w.crit.Lock()
	defer w.crit.Unlock()
	w.buf.Reset()
}

// Compare returns true if the captured output is exactly s.
func (w *CompareWriter) Compare(s string) bool {
	return w.String() == s
}

// Contains returns true if s appears anywhere in the captured output.
func (w *CompareWriter) Contains(s string) bool {
	return strings.Contains(w.String(), s)
}

// Lines returns the captured output split into lines. A trailing newline does
// not produce an empty final line.
func (w *CompareWriter) Lines() []string {
	s := strings.TrimSuffix(w.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// String implements the fmt.Stringer interface.
func (w *CompareWriter) String() string {
	w.crit.Lock()
	defer w.crit.Unlock()
	return w.buf.String()
}
