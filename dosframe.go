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
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/jetsetilly/dosframe/logger"
	"github.com/jetsetilly/dosframe/modalflag"
	"github.com/jetsetilly/dosframe/statsview"
	"github.com/jetsetilly/dosframe/version"
)

type stateReq = string

const (
	// destroy the window and exit. an optional int argument is the exit status
	reqQuit stateReq = "QUIT"

	// stop handling ctrl-c in the main loop. no arguments
	reqNoIntSig stateReq = "NOINTSIG"
)

type stateRequest struct {
	req  stateReq
	args any
}

// GuiCreator is a viewer window owned by the main thread. The window is
// created by sending a function to mainSync.creator, so that the GPU context
// is made on the main thread too.
type GuiCreator interface {
	// release the view, the GPU device and the window. renderer statistics
	// are written to the io.Writer
	Destroy(io.Writer)

	// poll window events, refresh the view and present it. called repeatedly
	// by the main loop so it must return promptly
	Service()
}

// the launch() goroutine parses the command line and produces frames. SDL and
// Ebitengine both need the window and its GL context on the main thread so
// launch() asks main() to create and destroy them through these channels.
type mainSync struct {
	state   chan stateRequest
	creator chan func() (GuiCreator, error)

	// the result of creator will be returned on either of these two channels.
	creation      chan GuiCreator
	creationError chan error
}

// #mainthread
func main() {
	sync := &mainSync{
		state:         make(chan stateRequest),
		creator:       make(chan func() (GuiCreator, error)),
		creation:      make(chan GuiCreator),
		creationError: make(chan error),
	}

	// exit status set by reqQuit
	exitVal := 0

	// #ctrlc closes the viewer window
	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)

	go launch(sync, os.Args[1:])

	// when there is nothing on the channels the window is serviced, which
	// refreshes the view with the latest published frame
	done := false
	var gui GuiCreator
	for !done {
		select {
		case <-intChan:
			fmt.Println("\r")
			done = true
			if gui != nil {
				gui.Destroy(os.Stderr)
			}

		case creator := <-sync.creator:
			var err error

			if gui != nil {
				gui.Destroy(os.Stderr)
			}

			gui, err = creator()
			if err != nil {
				sync.creationError <- err

				// a failed viewer may be a typed nil
				gui = nil
			} else {
				sync.creation <- gui
			}

		case state := <-sync.state:
			switch state.req {
			case reqQuit:
				done = true
				if gui != nil {
					gui.Destroy(os.Stderr)
				}

				if state.args != nil {
					if v, ok := state.args.(int); ok {
						exitVal = v
					} else {
						panic(fmt.Sprintf("cannot convert %s arguments into int", reqQuit))
					}
				}

			case reqNoIntSig:
				signal.Reset(os.Interrupt)
				if state.args != nil {
					panic(fmt.Sprintf("%s does not accept any arguments", reqNoIntSig))
				}
			}

		default:
			if gui != nil {
				gui.Service()
			}
		}
	}

	fmt.Print("\r")
	os.Exit(exitVal)
}

// launch is called from main() as a goroutine. uses mainSync instance to
// indicate window creation and to quit.
func launch(sync *mainSync, args []string) {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(args)
	md.NewMode()
	md.AddSubModes("VIEW", "EBITEN", "SNAPSHOT", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		sync.state <- stateRequest{req: reqQuit}
		return

	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		sync.state <- stateRequest{req: reqQuit, args: 10}
		return
	}

	switch md.Mode() {
	case "VIEW":
		err = view(md, sync)

	case "EBITEN":
		err = viewEbiten(md, sync)

	case "SNAPSHOT":
		err = snapshot(md)

	case "VERSION":
		err = showVersion(md)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		sync.state <- stateRequest{req: reqQuit, args: 20}
		return
	}

	sync.state <- stateRequest{req: reqQuit}
}

// startAmbient applies the logging and statistics flags shared by every mode
// that shows frames.
func startAmbient(fl *displayFlags) {
	if *fl.log {
		logger.SetEcho(os.Stdout, true)
	} else {
		logger.SetEcho(nil, false)
	}

	if *fl.statsview {
		if statsview.Available() {
			statsview.Launch(os.Stdout, *fl.statsaddr)
		} else {
			logger.Log(logger.Allow, "statsview", "not available in this build")
		}
	}
}

func showVersion(md *modalflag.Modes) error {
	md.NewMode()
	revision := md.AddBool("revision", false, "display revision information from version control")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	ver, rev, _ := version.Version()
	fmt.Printf("%s %s\n", version.ApplicationName, ver)
	if *revision {
		fmt.Println(rev)
	}

	return nil
}
