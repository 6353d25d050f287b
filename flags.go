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

package main

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jetsetilly/dosframe/display"
	"github.com/jetsetilly/dosframe/frame"
	"github.com/jetsetilly/dosframe/limiter"
	"github.com/jetsetilly/dosframe/logger"
	"github.com/jetsetilly/dosframe/modalflag"
	"github.com/jetsetilly/dosframe/prefs"
	"github.com/jetsetilly/dosframe/producer"
	"github.com/jetsetilly/dosframe/statsview"
)

// flags that are also display preferences
var flagPrefs = map[string]string{
	"tier":   "display.tier",
	"shader": "display.shader",
	"aspect": "display.aspectRatio",
	"maxss":  "display.maxSupersampling",
}

// flags shared by the modes that show frames
type displayFlags struct {
	tier   *string
	shader *string
	aspect *float64
	maxss  *float64
	size   *string
	depth  *int
	fps    *float64
	prefs  *string

	log       *bool
	statsview *bool
	statsaddr *string

	// names of the flags set on the command line
	set []string
}

func addDisplayFlags(md *modalflag.Modes, size string) *displayFlags {
	return &displayFlags{
		tier:      md.AddString("tier", "stepped", "renderer tier: basic, supersampling, shader, stepped"),
		shader:    md.AddString("shader", "smoothed", "built-in shader (crt, ripple, smoothed), shader definition file, or none"),
		aspect:    md.AddFloat64("aspect", 4.0/3.0, "aspect ratio of the display. zero for square pixels"),
		maxss:     md.AddFloat64("maxss", 4.0, "maximum supersampling scale"),
		size:      md.AddString("size", size, "size of the display as WxH"),
		depth:     md.AddInt("depth", 32, "bit depth of generated frames: 8, 15, 16, 24, 32"),
		fps:       md.AddFloat64("fps", float64(limiter.VGARefreshRate), "frames per second of the test pattern"),
		prefs:     md.AddString("prefs", "", "preferences overrides (key::value; key::value)"),
		log:       md.AddBool("log", false, "echo log to stdout"),
		statsview: md.AddBool("statsview", false, "run stats server (statsview builds only)"),
		statsaddr: md.AddString("statsaddr", statsview.DefaultAddress, "address of the stats server"),
	}
}

// visit records the flags set on the command line. must be called after
// md.Parse()
func (fl *displayFlags) visit(md *modalflag.Modes) {
	fl.set = fl.set[:0]
	md.Visit(func(flag string) {
		fl.set = append(fl.set, flag)
	})
}

// commandLinePrefs returns the prefs command line string for the flags that
// were set on the command line, followed by the -prefs string
func (fl *displayFlags) commandLinePrefs() string {
	values := map[string]string{
		"tier":   *fl.tier,
		"shader": *fl.shader,
		"aspect": fmt.Sprintf("%g", *fl.aspect),
		"maxss":  fmt.Sprintf("%g", *fl.maxss),
	}

	var s []string
	for _, f := range fl.set {
		if key, ok := flagPrefs[f]; ok {
			s = append(s, fmt.Sprintf("%s::%s", key, values[f]))
		}
	}
	sort.Strings(s)

	if p := strings.TrimSpace(*fl.prefs); p != "" {
		s = append(s, p)
	}

	return strings.Join(s, "; ")
}

// preferences loads the display preferences with the command line overrides
func (fl *displayFlags) preferences() (*display.Preferences, error) {
	prefs.PushCommandLineStack(fl.commandLinePrefs())
	defer prefs.PopCommandLineStack()
	return display.NewPreferences()
}

// source of frames for a display. the limiter.Display is used to quantise the
// frame rate of generated frames and may be nil
type source func(ctx context.Context, pub producer.Publisher, disp limiter.Display)

// newSource returns a source that publishes the image file once or, if there
// is no image, publishes a test pattern until the context is cancelled. the
// AspectSetter changes the aspect ratio of the source while it is running
func newSource(image string, fl *displayFlags, aspect float64) (source, display.AspectSetter, error) {
	if image != "" {
		f, err := producer.LoadImage(image, *fl.depth)
		if err != nil {
			return nil, nil, err
		}
		still := producer.NewStill(f)
		still.SetAspectRatio(aspect)

		return func(ctx context.Context, pub producer.Publisher, _ limiter.Display) {
			still.Run(ctx, pub)
		}, still, nil
	}

	pat, err := producer.NewPattern(patternWidth, patternHeight, *fl.depth)
	if err != nil {
		return nil, nil, err
	}
	pat.SetAspectRatio(aspect)

	return func(ctx context.Context, pub producer.Publisher, disp limiter.Display) {
		lmtr := limiter.NewLimiter(float32(*fl.fps))
		defer lmtr.Stop()
		if disp != nil {
			lmtr.SetDisplay(disp)
		}
		pat.Run(ctx, pub, lmtr)
	}, pat, nil
}

// aspect ratios selected in turn by the viewer key. zero is square pixels
var aspectRatios = []float64{4.0 / 3.0, 16.0 / 10.0, 0}

// nextAspectRatio returns the entry of aspectRatios after the current value.
// values not in the list select the first entry
func nextAspectRatio(current float64) float64 {
	for i, r := range aspectRatios {
		if math.Abs(r-current) < 0.0001 {
			return aspectRatios[(i+1)%len(aspectRatios)]
		}
	}
	return aspectRatios[0]
}

// sourceArg returns the single optional argument of a mode
func sourceArg(md *modalflag.Modes) (string, error) {
	switch len(md.RemainingArgs()) {
	case 0:
		return "", nil
	case 1:
		return md.GetArg(0), nil
	}
	return "", fmt.Errorf("too many arguments for %s mode", md)
}

// the resolution of generated frames, which is the common VGA mode
const (
	patternWidth  = 320
	patternHeight = 200
)

func logTier(v *display.View) {
	logger.Logf(logger.Allow, "dosframe", "using %s renderer", v.Tier())
}

// help text for the keys recognised by both viewers
const viewerKeys = `Keys:
  F1-F4   select basic, supersampling, shader or stepped renderer
  A       toggle aspect ratio management
  R       select aspect ratio: 4:3, 16:10 or square pixels
  F12     save screenshot
  Esc     close window`

// viewer is a window created on the main thread by a GuiCreator function
type viewer interface {
	GuiCreator
	Closed() <-chan struct{}
}

// runViewer parses the display flags, creates the viewer on the main thread
// and publishes frames to it until the viewer is closed
func runViewer(md *modalflag.Modes, sync *mainSync, create func(*display.Preferences, *frame.Slot, int, int) (viewer, error)) error {
	md.NewMode()
	fl := addDisplayFlags(md, "960x600")
	md.AdditionalHelp(viewerKeys)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	fl.visit(md)
	startAmbient(fl)

	img, err := sourceArg(md)
	if err != nil {
		return err
	}

	size, err := display.ParseSize(*fl.size)
	if err != nil {
		return err
	}
	width, height := size.Ints()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("window size must not be zero (%s)", *fl.size)
	}

	prf, err := fl.preferences()
	if err != nil {
		return err
	}

	src, aspect, err := newSource(img, fl, prf.AspectRatio.Get().(float64))
	if err != nil {
		return err
	}
	prf.AttachSource(aspect)

	slot := &frame.Slot{}

	sync.creator <- func() (GuiCreator, error) {
		return create(prf, slot, width, height)
	}

	var vw viewer
	select {
	case g := <-sync.creation:
		vw = g.(viewer)
	case err := <-sync.creationError:
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	disp, _ := vw.(limiter.Display)
	go src(ctx, slot, disp)

	<-vw.Closed()

	return nil
}
