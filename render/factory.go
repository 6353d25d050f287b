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

package render

import (
	"fmt"

	"github.com/jetsetilly/dosframe/gpu"
	"github.com/jetsetilly/dosframe/logger"
)

// New creates a renderer of the tier specified in the Config.
//
// New does not fall back to a simpler tier on failure. That decision belongs
// to the caller, which will usually do something like this:
//
//	for {
//		r, err = render.New(dev, cfg)
//		if err == nil {
//			break
//		}
//		var ok bool
//		if cfg.Tier, ok = cfg.Tier.Simpler(); !ok {
//			return err
//		}
//	}
func New(dev gpu.Device, cfg Config) (Renderer, error) {
	if dev == nil {
		return nil, fmt.Errorf("render: no device")
	}

	cfg = cfg.normalised()

	var r Renderer
	var err error

	switch cfg.Tier {
	case TierBasic:
		r = NewBasic(dev, cfg)
	case TierSupersampling:
		r = NewSupersampling(dev, cfg)
	case TierShader:
		r, err = NewShader(dev, cfg)
	case TierStepped:
		r, err = NewStepped(dev, cfg)
	default:
		return nil, fmt.Errorf("render: unknown tier (%d)", cfg.Tier)
	}

	if err != nil {
		return nil, err
	}

	logger.Logf(cfg.Log, "render", "created %s renderer", r.Tier())

	return r, nil
}
