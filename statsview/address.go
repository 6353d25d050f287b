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

package statsview

// DefaultAddress of the stats server.
const DefaultAddress = "localhost:12601"

const page = "/debug/statsview"

func address(addr string) string {
	if addr == "" {
		return DefaultAddress
	}
	return addr
}

// URL returns the location of the statistics page for a server running at
// the address. An empty address means DefaultAddress.
func URL(addr string) string {
	return "http://" + address(addr) + page
}
