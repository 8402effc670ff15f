package proxy

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"meet-registration-portal/utils"
)

// Handler relays requests to the store server verbatim. It exists so
// browser clients on restricted networks only ever talk to one origin; the
// service token is attached here, server-side, and never reaches the
// client.
type Handler struct {
	UpstreamURL  string
	ServiceToken string
	Client       *http.Client
}

func NewHandler(upstreamURL, serviceToken string) *Handler {
	return &Handler{
		UpstreamURL:  upstreamURL,
		ServiceToken: serviceToken,
		Client:       utils.HTTPClient,
	}
}

// SetupRoutes relays every path and method.
func (h *Handler) SetupRoutes(app *fiber.App) {
	app.All("/*", h.Forward)
}

// Forward passes the request upstream and mirrors the response back:
// upstream's status code and body, untouched. A body that is not valid
// JSON comes back as text/plain so callers can still read error pages.
func (h *Handler) Forward(c *fiber.Ctx) error {
	if h.UpstreamURL == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Proxy is not configured: upstream URL missing",
		})
	}

	base, err := url.Parse(h.UpstreamURL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Proxy is not configured: invalid upstream URL",
		})
	}
	target := base.JoinPath(c.Path())
	target.RawQuery = string(c.Request().URI().QueryString())

	var body io.Reader
	if len(c.Body()) > 0 {
		body = bytes.NewReader(c.Body())
	}
	req, err := http.NewRequestWithContext(c.Context(), c.Method(), target.String(), body)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Proxy failed",
			"details": err.Error(),
		})
	}
	if ct := c.Get("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	req.Header.Set("X-Service-Token", h.ServiceToken)

	resp, err := h.Client.Do(req)
	if err != nil {
		log.Printf("❌ [PROXY] Upstream call failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"error":   "Proxy failed",
			"details": err.Error(),
		})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("❌ [PROXY] Reading upstream response failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"error":   "Proxy failed",
			"details": err.Error(),
		})
	}

	if json.Valid(raw) {
		c.Set("Content-Type", "application/json")
	} else {
		c.Set("Content-Type", "text/plain; charset=utf-8")
	}
	return c.Status(resp.StatusCode).Send(raw)
}
