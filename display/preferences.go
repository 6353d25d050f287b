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
	"sync"

	"github.com/jetsetilly/dosframe/geometry"
	"github.com/jetsetilly/dosframe/prefs"
	"github.com/jetsetilly/dosframe/render"
	"github.com/jetsetilly/dosframe/resources"
)

// Preferences for the display. Use Attach() to apply changes to a View as
// they happen.
//
// Changes to attached preferences reach the View through the prefs hooks, so
// values must be set from the goroutine that owns the View.
type Preferences struct {
	dsk *prefs.Disk

	Tier             prefs.String
	MaxSupersampling prefs.Float
	ManagesAspect    prefs.Bool
	AspectRatio      prefs.Float
	Shader           prefs.String
	ScalesInPixels   prefs.Bool

	// maximum viewport size as WxH. a zero size means no limit
	MaxViewport *prefs.Generic

	crit        sync.Mutex
	maxViewport geometry.Size
	view        *View
}

// AspectSetter is implemented by frame sources that can change the aspect
// ratio of the frames they produce.
type AspectSetter interface {
	SetAspectRatio(ratio float64)
}

func (p *Preferences) String() string {
	return p.dsk.String()
}

const (
	tier             = "stepped"
	maxSupersampling = render.DefaultMaxSupersamplingScale
	managesAspect    = true
	aspectRatio      = 4.0 / 3.0
	shader           = "smoothed"
	scalesInPixels   = false
)

// NewPreferences is the preferred method of initialisation for the
// Preferences type.
func NewPreferences() (*Preferences, error) {
	p := &Preferences{}

	p.MaxViewport = prefs.NewGeneric(
		func(s string) error {
			sz, err := ParseSize(s)
			if err != nil {
				return err
			}
			p.crit.Lock()
			p.maxViewport = sz
			v := p.view
			p.crit.Unlock()
			if v != nil {
				v.SetMaxViewportSize(sz)
			}
			return nil
		},
		func() string {
			p.crit.Lock()
			defer p.crit.Unlock()
			return FormatSize(p.maxViewport)
		},
	)

	p.SetDefaults()

	pth, err := resources.JoinPath(prefs.DefaultPrefsFile)
	if err != nil {
		return nil, err
	}

	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, err
	}

	err = p.dsk.Add("display.tier", &p.Tier)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("display.maxSupersampling", &p.MaxSupersampling)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("display.managesAspect", &p.ManagesAspect)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("display.aspectRatio", &p.AspectRatio)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("display.shader", &p.Shader)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("display.scalesInPixels", &p.ScalesInPixels)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("display.maxViewport", p.MaxViewport)
	if err != nil {
		return nil, err
	}

	err = p.dsk.Load(true)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// SetDefaults reverts all display settings to default values.
func (p *Preferences) SetDefaults() {
	p.Tier.Set(tier)
	p.MaxSupersampling.Set(maxSupersampling)
	p.ManagesAspect.Set(managesAspect)
	p.AspectRatio.Set(aspectRatio)
	p.Shader.Set(shader)
	p.ScalesInPixels.Set(scalesInPixels)
	p.MaxViewport.Set("0x0")
}

// Load display preferences and apply to the attached View.
func (p *Preferences) Load() error {
	return p.dsk.Load(false)
}

// Save current display preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}

// Config returns a render.Config reflecting the preference values. The
// shader preference is resolved with ResolveShader().
func (p *Preferences) Config() (render.Config, error) {
	cfg := render.Config{
		MaxSupersamplingScale: p.MaxSupersampling.Get().(float64),
		ManagesAspectRatio:    p.ManagesAspect.Get().(bool),
		ScalesInPixels:        p.ScalesInPixels.Get().(bool),
		MaxViewportSize:       p.maxViewportSize(),
	}

	var err error
	cfg.Tier, err = render.ParseTier(p.Tier.String())
	if err != nil {
		return cfg, fmt.Errorf("display: %w", err)
	}

	steps, err := ResolveShader(p.Shader.String())
	if err != nil {
		return cfg, err
	}
	cfg.Steps = steps
	if len(steps) > 0 {
		cfg.Shaders = steps[len(steps)-1].Set
	}

	return cfg, nil
}

func (p *Preferences) maxViewportSize() geometry.Size {
	p.crit.Lock()
	defer p.crit.Unlock()
	return p.maxViewport
}

// Attach the preferences to a View. Subsequent changes to the preference
// values are applied to the View immediately.
func (p *Preferences) Attach(v *View) {
	p.crit.Lock()
	p.view = v
	p.crit.Unlock()

	p.Tier.SetHookPre(func(value prefs.Value) error {
		_, err := render.ParseTier(value.(string))
		return err
	})
	p.Tier.SetHookPost(func(value prefs.Value) error {
		t, _ := render.ParseTier(value.(string))
		return v.SetTier(t)
	})

	p.MaxSupersampling.SetHookPost(func(value prefs.Value) error {
		return v.SetMaxSupersamplingScale(value.(float64))
	})

	p.ManagesAspect.SetHookPost(func(value prefs.Value) error {
		v.SetManagesAspectRatio(value.(bool))
		return nil
	})

	p.Shader.SetHookPost(func(value prefs.Value) error {
		steps, err := ResolveShader(value.(string))
		if err != nil {
			return err
		}
		return v.SetShaders(steps)
	})

	p.ScalesInPixels.SetHookPost(func(value prefs.Value) error {
		return v.SetScalesInPixels(value.(bool))
	})
}

// AttachSource attaches the aspect ratio preference to the source of frames.
// The aspect ratio is a property of each frame so changes are applied by the
// source rather than by the View.
func (p *Preferences) AttachSource(src AspectSetter) {
	p.AspectRatio.SetHookPost(func(value prefs.Value) error {
		src.SetAspectRatio(value.(float64))
		return nil
	})
}

// ParseSize parses a size in the form WxH.
func ParseSize(s string) (geometry.Size, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return geometry.Size{}, nil
	}
	var w, h int
	if _, err := fmt.Sscanf(strings.ToLower(s), "%dx%d", &w, &h); err != nil || w < 0 || h < 0 {
		return geometry.Size{}, fmt.Errorf("display: invalid size (%s)", s)
	}
	return geometry.NewSize(w, h), nil
}

// FormatSize returns the size in the form accepted by ParseSize().
func FormatSize(sz geometry.Size) string {
	w, h := sz.Ints()
	return fmt.Sprintf("%dx%d", w, h)
}
