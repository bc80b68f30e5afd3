package app

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// HandleHealth returns data about the health of the process and the sensor line.
// output example:
//  {"NumGoroutines":11,"HeapAllocatedMB":3,"SysMemoryMB":12,"Version":"1.0.3+20241001",
//   "Sensor":"DHT22","Gpio":4,"Driver":"gpiod","Line":"high","LastFrame":"2024-10-01T12:00:00+02:00","FrameAge":"3.2s"}
func (app *App) HandleHealth() fiber.Handler {
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}

	host, _ := os.Hostname()

	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request health")

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		app.data.RLock()
		last := app.data.frame.TimeStamp
		app.data.RUnlock()

		var age string
		if !last.IsZero() {
			age = time.Since(last).Round(100 * time.Millisecond).String()
		}

		driver := ""
		if app.chip != nil {
			driver = app.chip.Driver()
		}

		healthData := struct {
			NumGoroutines   int
			NumCPU          int
			HeapAllocatedMB uint64
			SysMemoryMB     uint64
			Version         string
			ProgLang        string
			HostName        string
			Time            string
			Sensor          string
			Gpio            int
			Driver          string
			Line            string
			LastFrame       time.Time
			FrameAge        string
		}{
			NumGoroutines:   runtime.NumGoroutine(),
			NumCPU:          runtime.NumCPU(),
			HeapAllocatedMB: bToMb(m.Alloc),
			SysMemoryMB:     bToMb(m.Sys),
			ProgLang:        runtime.Version(),
			Version:         VERSION,
			HostName:        host,
			Time:            time.Now().Format(time.RFC3339),
			Sensor:          app.config.Sensor.Variant.String(),
			Gpio:            app.config.Sensor.Gpio,
			Driver:          driver,
			Line:            app.lineLevel().String(),
			LastFrame:       last,
			FrameAge:        age,
		}
		ctx.Status(http.StatusOK)
		return ctx.JSON(healthData)
	}
}
