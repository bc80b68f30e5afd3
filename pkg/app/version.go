package app

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// VERSION is major.minor.patch+<first day of the release month>.
const (
	VERSION = "1.0.3+20241001"
	MODULE  = "dhtl"
)

// HandleVersion is the get application version web handler.
func (app *App) HandleVersion() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request version")

		return ctx.JSON(fiber.Map{
			"version":     VERSION,
			"description": MODULE,
			"about":       Version(),
			"sensor":      app.config.Sensor.Variant.String(),
		})
	}
}

// Version returns the module name and the version without build date, e.g. "dhtl V1.0.3".
func Version() string {
	return strings.TrimSpace(MODULE + " V" + strings.SplitN(VERSION, "+", 2)[0])
}
