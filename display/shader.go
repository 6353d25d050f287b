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

package display

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/dosframe/render"
	"github.com/jetsetilly/dosframe/shaderdef"
	"github.com/jetsetilly/dosframe/shaders"
)

// ResolveShader returns the steps for the name of a built-in shader set or
// the path of a shader definition file. A definition file is used at every
// scale. The empty string or "none" returns no steps.
func ResolveShader(name string) ([]render.Step, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "none") {
		return nil, nil
	}

	if steps, ok := shaders.Lookup(name); ok {
		return steps, nil
	}

	set, err := shaderdef.LoadFile(name)
	if err != nil {
		return nil, fmt.Errorf("display: shader %q is not built-in (%s): %w",
			name, strings.Join(shaders.Names(), ", "), err)
	}

	return shaders.Single(set), nil
}
