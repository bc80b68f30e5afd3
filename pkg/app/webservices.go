package app

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

const (
	// defaultHistory and maxHistory limit the frames returned by /history
	defaultHistory = 100
	maxHistory     = 10000
)

// runWebServer starts the applications web server and listens for web requests.
//  It's designed to run in a separate go function to not block the main go function.
//  e.g.: go runWebServer()
//  See app.Run()
func (app *App) runWebServer() {
	err := app.web.Listen(app.urlParsed.Host)
	debug.ErrorLog.Print(err)
}

// HandleData returns the last accepted frame.
// output example:
//  {"TimeStamp":"2024-01-01T12:00:00+01:00","Sensor":"DHT22","Humidity":52.2,"Temperature":-26,"Changed":2}
func (app *App) HandleData() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request data")

		app.data.RLock()
		f := app.data.frame
		app.data.RUnlock()

		return ctx.JSON(f)
	}
}

// HandleHistory returns the latest frames of the datafile, newest first.
// The query parameter n limits the number of frames (default 100).
func (app *App) HandleHistory() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request history")

		if app.store == nil {
			return ctx.Status(http.StatusNotFound).JSON(fiber.Map{"error": "no datafile configured"})
		}

		n := ctx.QueryInt("n", defaultHistory)
		if n <= 0 || n > maxHistory {
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "n out of range"})
		}

		frames, err := app.store.Last(n)
		if err != nil {
			debug.ErrorLog.Printf("can't read history: %v", err)
			return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}

		return ctx.JSON(frames)
	}
}
