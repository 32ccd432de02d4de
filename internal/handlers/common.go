package handlers

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage       = 1
	HomePageSize      = 6
	AuthorPageSize    = 5
	flashCookieName   = "tastebook_flash"
	flashCookieMaxAge = 60
)

// GetPage extracts the 1-indexed page number from the request.
func GetPage(c *gin.Context) int {
	pageQuery := c.DefaultQuery("page", strconv.Itoa(DefaultPage))
	page, err := strconv.Atoi(pageQuery)
	if err != nil || page < 1 {
		page = DefaultPage
	}
	return page
}

// Flash is a one-shot message surfaced on the next rendered page.
type Flash struct {
	Category string // "success", "info", "warning", "danger"
	Message  string
}

// SetFlash stores a flash message in a short-lived cookie.
func SetFlash(c *gin.Context, category, message string) {
	value := base64.RawURLEncoding.EncodeToString([]byte(category + "|" + message))
	c.SetCookie(flashCookieName, value, flashCookieMaxAge, "/", "", false, true)
}

// PopFlash reads and clears the flash cookie.
func PopFlash(c *gin.Context) *Flash {
	value, err := c.Cookie(flashCookieName)
	if err != nil || value == "" {
		return nil
	}
	c.SetCookie(flashCookieName, "", -1, "/", "", false, true)

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return nil
	}
	return &Flash{Category: parts[0], Message: parts[1]}
}

// wantsJSON reports whether the client negotiated a JSON response.
func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json") ||
		strings.Contains(c.ContentType(), "application/json")
}

// render wraps c.HTML, injecting the flash message and the current identity
// so every template can show them.
func render(c *gin.Context, status int, templateName string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = PopFlash(c)
	}
	if username, exists := c.Get("username"); exists {
		data["CurrentUser"] = username
	}
	c.HTML(status, templateName, data)
}

// notFound aborts with a 404 and no internal detail.
func notFound(c *gin.Context) {
	if wantsJSON(c) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	render(c, http.StatusNotFound, "error.html", gin.H{"Status": http.StatusNotFound, "Message": "Not found"})
	c.Abort()
}

// forbidden aborts with a hard 403 and no content leak.
func forbidden(c *gin.Context) {
	if wantsJSON(c) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	render(c, http.StatusForbidden, "error.html", gin.H{"Status": http.StatusForbidden, "Message": "Forbidden"})
	c.Abort()
}

// safeNext restricts post-login redirects to site-relative paths.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/home"
}
