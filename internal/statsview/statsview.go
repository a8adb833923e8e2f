// Package statsview serves live runtime statistics (goroutines, heap, GC)
// while the emulator runs.
package statsview

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const path = "/debug/statsview"

// Launch starts the viewer on addr in the background and returns a function
// that stops it.
func Launch(addr string) (stop func()) {
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()

	go func() {
		if err := mgr.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("stats server failed", "addr", addr, "err", err)
		}
	}()

	slog.Info("stats server available", "url", "http://"+addr+path)
	return mgr.Stop
}
