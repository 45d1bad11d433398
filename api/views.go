package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	flashCookie     = "bsa_flash"
	pendingFlashKey = "pending_flashes"
)

const (
	flashError   = "error"
	flashSuccess = "success"
)

type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// addFlash queues a message for the next rendered page. Queued messages are
// written to a cookie only when the handler redirects.
func addFlash(c *gin.Context, category, message string) {
	c.Set(pendingFlashKey, append(pendingFlashes(c), Flash{Category: category, Message: message}))
}

func pendingFlashes(c *gin.Context) []Flash {
	if v, ok := c.Get(pendingFlashKey); ok {
		if flashes, ok := v.([]Flash); ok {
			return flashes
		}
	}
	return nil
}

func redirect(c *gin.Context, location string) {
	if flashes := pendingFlashes(c); len(flashes) > 0 {
		if value, err := encodeFlashes(flashes); err == nil {
			setCookie(c, flashCookie, value, 60, false)
		}
	}
	c.Redirect(http.StatusSeeOther, location)
}

// takeFlashes returns messages carried over from the previous request plus
// those queued during this one, and clears the cookie.
func takeFlashes(c *gin.Context) []Flash {
	var flashes []Flash
	if raw, err := c.Cookie(flashCookie); err == nil && raw != "" {
		if decoded, err := decodeFlashes(raw); err == nil {
			flashes = decoded
		}
		setCookie(c, flashCookie, "", -1, false)
	}
	return append(flashes, pendingFlashes(c)...)
}

func encodeFlashes(flashes []Flash) (string, error) {
	data, err := json.Marshal(flashes)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

func decodeFlashes(raw string) ([]Flash, error) {
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, err
	}
	var flashes []Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil, err
	}
	return flashes, nil
}

func setCookie(c *gin.Context, name, value string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", secure, true)
}

type pages struct {
	brand string
}

func (p pages) render(c *gin.Context, status int, name, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Brand"] = p.brand
	data["Title"] = title
	data["Flashes"] = takeFlashes(c)
	c.HTML(status, name, data)
}
