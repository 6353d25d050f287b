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

package gl32

import (
	"strings"

	"github.com/go-gl/gl/v3.2-core/gl"

	"github.com/jetsetilly/dosframe/gpu"
)

const standardVertexShader = `#version 150

in vec2 Position;
in vec2 TexCoord;
out vec2 vTexCoord;

void main() {
	vTexCoord = TexCoord;
	gl_Position = vec4(Position, 0.0, 1.0);
}
`

const copyFragmentShader = `#version 150

uniform sampler2D rubyTexture;
in vec2 vTexCoord;
out vec4 FragColor;

void main() {
	FragColor = texture(rubyTexture, vTexCoord);
}
`

type program struct {
	dev    *Device
	name   string
	handle uint32

	// attributes
	position int32
	texCoord int32

	// uniforms
	texture     int32
	textureSize int32
	inputSize   int32
	outputSize  int32
	origInput   int32
	frameCount  int32
	time        int32
}

func (p *program) Name() string {
	return p.name
}

func (p *program) Release() {
	p.dev.checkGoroutine()

	if p.handle != 0 {
		gl.DeleteProgram(p.handle)
		p.handle = 0
	}
}

// setAttributes makes the program current and sets the uniforms and vertex
// attributes for a draw. the vertex buffer must already be bound
func (p *program) setAttributes(u gpu.Uniforms) {
	gl.UseProgram(p.handle)

	if p.texture >= 0 {
		gl.Uniform1i(p.texture, 0)
	}
	if p.textureSize >= 0 {
		gl.Uniform2f(p.textureSize, float32(u.TextureSize.W), float32(u.TextureSize.H))
	}
	if p.inputSize >= 0 {
		gl.Uniform2f(p.inputSize, float32(u.InputSize.W), float32(u.InputSize.H))
	}
	if p.outputSize >= 0 {
		gl.Uniform2f(p.outputSize, float32(u.OutputSize.W), float32(u.OutputSize.H))
	}
	if p.origInput >= 0 {
		gl.Uniform2f(p.origInput, float32(u.SourceSize.W), float32(u.SourceSize.H))
	}
	if p.frameCount >= 0 {
		gl.Uniform1i(p.frameCount, int32(u.FrameCount))
	}
	if p.time >= 0 {
		gl.Uniform1f(p.time, float32(u.Time))
	}

	// each vertex is two floats of position and two floats of texture
	// coordinate
	const stride = 4 * 4
	if p.position >= 0 {
		gl.EnableVertexAttribArray(uint32(p.position))
		gl.VertexAttribPointerWithOffset(uint32(p.position), 2, gl.FLOAT, false, stride, 0)
	}
	if p.texCoord >= 0 {
		gl.EnableVertexAttribArray(uint32(p.texCoord))
		gl.VertexAttribPointerWithOffset(uint32(p.texCoord), 2, gl.FLOAT, false, stride, 2*4)
	}
}

// CompileProgram implements the gpu.Device interface. The GLSL part of the
// program source is used.
func (dev *Device) CompileProgram(src gpu.ProgramSource) (gpu.Program, error) {
	dev.checkGoroutine()

	if src.Fragment == "" {
		return nil, &gpu.CompileError{
			Name:  src.Name,
			Stage: "fragment",
			Log:   "program has no GLSL fragment source",
		}
	}

	vert := src.Vertex
	if vert == "" {
		vert = standardVertexShader
	}

	vertHandle, log := compileShader(gl.VERTEX_SHADER, vert)
	if log != "" {
		return nil, &gpu.CompileError{Name: src.Name, Stage: "vertex", Source: vert, Log: log}
	}
	defer gl.DeleteShader(vertHandle)

	fragHandle, log := compileShader(gl.FRAGMENT_SHADER, src.Fragment)
	if log != "" {
		return nil, &gpu.CompileError{Name: src.Name, Stage: "fragment", Source: src.Fragment, Log: log}
	}
	defer gl.DeleteShader(fragHandle)

	p := &program{
		dev:    dev,
		name:   src.Name,
		handle: gl.CreateProgram(),
	}

	gl.AttachShader(p.handle, vertHandle)
	gl.AttachShader(p.handle, fragHandle)
	gl.BindFragDataLocation(p.handle, 0, gl.Str("FragColor\x00"))
	gl.LinkProgram(p.handle)

	if log := linkError(p.handle); log != "" {
		gl.DeleteProgram(p.handle)
		return nil, &gpu.CompileError{Name: src.Name, Stage: "link", Log: log}
	}

	// get references to shader attributes and uniforms variables
	p.position = gl.GetAttribLocation(p.handle, gl.Str("Position\x00"))
	p.texCoord = gl.GetAttribLocation(p.handle, gl.Str("TexCoord\x00"))
	p.texture = gl.GetUniformLocation(p.handle, gl.Str("rubyTexture\x00"))
	p.textureSize = gl.GetUniformLocation(p.handle, gl.Str("rubyTextureSize\x00"))
	p.inputSize = gl.GetUniformLocation(p.handle, gl.Str("rubyInputSize\x00"))
	p.outputSize = gl.GetUniformLocation(p.handle, gl.Str("rubyOutputSize\x00"))
	p.origInput = gl.GetUniformLocation(p.handle, gl.Str("rubyOrigInputSize\x00"))
	p.frameCount = gl.GetUniformLocation(p.handle, gl.Str("rubyFrameCount\x00"))
	p.time = gl.GetUniformLocation(p.handle, gl.Str("Time\x00"))

	return p, nil
}

// compileShader returns the compiler log if compilation fails
func compileShader(stage uint32, source string) (uint32, string) {
	handle := gl.CreateShader(stage)

	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(handle, 1, csource, nil)
	free()

	gl.CompileShader(handle)

	var isCompiled int32
	gl.GetShaderiv(handle, gl.COMPILE_STATUS, &isCompiled)
	if isCompiled != 0 {
		return handle, ""
	}

	var logLength int32
	gl.GetShaderiv(handle, gl.INFO_LOG_LENGTH, &logLength)
	log := "unknown error"
	if logLength > 0 {
		// the length includes the NULL character
		b := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(handle, logLength, nil, gl.Str(b))
		log = strings.TrimRight(b, "\x00")
	}
	gl.DeleteShader(handle)

	return 0, log
}

func linkError(handle uint32) string {
	var isLinked int32
	gl.GetProgramiv(handle, gl.LINK_STATUS, &isLinked)
	if isLinked != 0 {
		return ""
	}

	var logLength int32
	gl.GetProgramiv(handle, gl.INFO_LOG_LENGTH, &logLength)
	if logLength <= 0 {
		return "unknown error"
	}
	b := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(handle, logLength, nil, gl.Str(b))
	return strings.TrimRight(b, "\x00")
}
