/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/propengine/engine"
	"github.com/spaghettifunk/propengine/engine/core"
	"github.com/spaghettifunk/propengine/testbed"
)

func main() {
	configPath := flag.String("config", "assets/scene.toml", "scene configuration file, empty for the builtin scene")
	flag.Parse()

	app, err := engine.LoadApplicationConfig(*configPath)
	if err != nil {
		core.LogFatal("%v", err)
	}

	tb := testbed.NewTestGame(app)

	e, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal("%v", err)
	}

	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		core.LogFatal("%v", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// the loop owns the GL context, so shutdown happens on its side
	go func() {
		<-sigCh
		e.RequestQuit()
	}()

	if err := e.Run(); err != nil {
		core.LogFatal("%v", err)
	}
}
