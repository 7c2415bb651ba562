package console

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Level of a user notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is a fire-and-forget message shown on the next page.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier delivers notifications to the user independently of the handler
// that raised them.
type Notifier interface {
	Notify(c *gin.Context, n Notification)
	// Pop returns and clears the pending notification, if any.
	Pop(c *gin.Context) *Notification
}

const flashCookie = "jomorais_flash"

// FlashNotifier keeps one notification in a short-lived cookie that the next
// rendered page consumes.
type FlashNotifier struct {
	Secure bool
}

// Notify sets the flash cookie.
func (f FlashNotifier) Notify(c *gin.Context, n Notification) {
	raw, err := json.Marshal(n)
	if err != nil {
		return
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   f.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop reads and expires the flash cookie.
func (f FlashNotifier) Pop(c *gin.Context) *Notification {
	value, err := c.Cookie(flashCookie)
	if err != nil || value == "" {
		return nil
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   f.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var n Notification
	if err := json.Unmarshal(raw, &n); err != nil || n.Message == "" {
		return nil
	}
	return &n
}
