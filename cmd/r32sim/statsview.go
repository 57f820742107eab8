package main

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const statsviewPath = "/debug/statsview"

// launchStatsview serves live Go runtime charts at addr while the
// simulator runs. The returned function stops the server.
func launchStatsview(addr string, output io.Writer) func() {
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()
	go mgr.Start()

	_, _ = fmt.Fprintf(output, "stats server available at %s%s\n", addr, statsviewPath)

	return mgr.Stop
}
