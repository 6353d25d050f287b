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

//go:build statsview

package statsview

import (
	"fmt"
	"io"
	"sync"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"github.com/jetsetilly/dosframe/logger"
)

// the server is started at most once for the lifetime of the program
var launch sync.Once

// Launch the stats server in a new goroutine. An empty address means
// DefaultAddress. Calls after the first do nothing except print the URL of the
// running server.
func Launch(output io.Writer, addr string) {
	addr = address(addr)

	launch.Do(func() {
		viewer.SetConfiguration(viewer.WithAddr(addr), viewer.WithTheme(viewer.ThemeWesteros))

		go func() {
			logger.Logf(logger.Allow, "statsview", "listening on %s", addr)
			statsview.New().Start()
		}()
	})

	fmt.Fprintf(output, "stats server available at %s\n", URL(addr))
}

// Available returns true if the stats server can be launched.
func Available() bool {
	return true
}
