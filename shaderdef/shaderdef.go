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

// Package shaderdef loads shader sets from BSNES XML shader definitions
// (version 1.1 of the format).
//
// A definition is a shader element containing one or more fragment elements
// and optional vertex elements:
//
//	<?xml version="1.0" encoding="UTF-8"?>
//	<shader language="GLSL">
//	    <vertex><![CDATA[ ... ]]></vertex>
//	    <fragment filter="nearest" scale="2.0"><![CDATA[ ... ]]></fragment>
//	    <fragment filter="linear"><![CDATA[ ... ]]></fragment>
//	</shader>
//
// Each fragment element is a shader pass. A vertex element applies to every
// fragment element that follows it, until the next vertex element. Fragment
// elements with no preceding vertex element use the standard vertex shader of
// the device.
//
// The scaling attributes of a fragment are: scale, scale_x and scale_y (a
// multiple of the input size), outscale, outscale_x and outscale_y (a
// multiple of the viewport size), size, size_x and size_y (a fixed number of
// pixels). An axis with no scaling attribute is the size of the viewport.
package shaderdef

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jetsetilly/dosframe/render"
)

// Sentinel errors returned by Load() and LoadFile().
var (
	// the definition could not be parsed or had an invalid attribute
	ErrInvalid = errors.New("shaderdef: invalid definition")

	// the definition is for a shader language other than GLSL
	ErrUnsupported = errors.New("shaderdef: unsupported definition")
)

// FileExtension is the extension of shader definition files.
const FileExtension = ".OpenGLShader"

type definition struct {
	XMLName  xml.Name  `xml:"shader"`
	Language string    `xml:"language,attr"`
	Elements []element `xml:",any"`
}

type element struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Source  string     `xml:",chardata"`
}

func (e element) attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return strings.TrimSpace(a.Value), true
		}
	}
	return "", false
}

// LoadFile loads the shader definition at the path. The name of the shader
// set is the file name without the extension.
func LoadFile(path string) (render.ShaderSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return render.ShaderSet{}, fmt.Errorf("shaderdef: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Load(f, name)
}

// Load reads a shader definition and returns it as a shader set with the
// specified name.
func Load(r io.Reader, name string) (render.ShaderSet, error) {
	set := render.ShaderSet{Name: name}

	var def definition
	err := xml.NewDecoder(r).Decode(&def)
	if err != nil {
		return set, fmt.Errorf("%w: %s: %w", ErrInvalid, name, err)
	}

	if !strings.EqualFold(def.Language, "GLSL") {
		return set, fmt.Errorf("%w: %s: language %q", ErrUnsupported, name, def.Language)
	}

	var vertex string
	for _, e := range def.Elements {
		switch e.XMLName.Local {
		case "vertex":
			vertex = strings.TrimSpace(e.Source)
		case "fragment":
			p, err := fragment(e, name, len(set.Passes))
			if err != nil {
				return set, err
			}
			p.Program.Vertex = vertex
			set.Passes = append(set.Passes, p)
		}
	}

	if len(set.Passes) == 0 {
		return set, fmt.Errorf("%w: %s: no fragment shaders", ErrInvalid, name)
	}

	return set, nil
}

func fragment(e element, name string, idx int) (render.Pass, error) {
	p := render.Pass{}
	p.Program.Name = fmt.Sprintf("%s:%d", name, idx)
	p.Program.Fragment = strings.TrimSpace(e.Source)

	if p.Program.Fragment == "" {
		return p, fmt.Errorf("%w: %s: empty fragment shader", ErrInvalid, p.Program.Name)
	}

	if v, ok := e.attr("filter"); ok {
		switch strings.ToLower(v) {
		case "nearest":
			p.Filter = render.FilterNearest
		case "linear":
			p.Filter = render.FilterLinear
		default:
			return p, fmt.Errorf("%w: %s: filter %q", ErrInvalid, p.Program.Name, v)
		}
	}

	// the attributes for each scaling mode. the attributes that apply to
	// both axes are listed first so that a per-axis attribute overrides them
	modes := []struct {
		mode render.ScaleMode
		attr string
	}{
		{render.ScaleInput, "scale"},
		{render.ScaleOutput, "outscale"},
		{render.ScaleFixed, "size"},
	}

	for _, m := range modes {
		for _, axis := range []string{"", "_x", "_y"} {
			v, ok := e.attr(m.attr + axis)
			if !ok {
				continue
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f <= 0 {
				return p, fmt.Errorf("%w: %s: %s%s %q", ErrInvalid, p.Program.Name, m.attr, axis, v)
			}
			s := render.PassScale{Mode: m.mode, Factor: f}
			switch axis {
			case "":
				p.ScaleX = s
				p.ScaleY = s
			case "_x":
				p.ScaleX = s
			case "_y":
				p.ScaleY = s
			}
		}
	}

	return p, nil
}
