package templates

import (
	"fmt"
	"io"
	"net/url"

	"github.com/a-h/templ"
	"github.com/aouyang1/beforeafter/content"
)

func sessionURL(sessionID string) string {
	return "/gallery/sessions/" + url.PathEscape(sessionID)
}

func slideURL(sessionID, action string) string {
	return sessionURL(sessionID) + "/" + action
}

func gotoURL(sessionID string, index int) string {
	return fmt.Sprintf("%s/goto/%d", sessionURL(sessionID), index)
}

func eventsURL(sessionID string) string {
	return sessionURL(sessionID) + "/events"
}

// CarouselID is the DOM id of a session's carousel, used as the htmx swap
// target.
func CarouselID(sessionID string) string {
	if sessionID == "" {
		return "gallery-carousel"
	}
	return "gallery-carousel-" + sessionID
}

func backgroundClass(bg content.Background) string {
	switch bg {
	case content.BackgroundWhite:
		return "bg-white"
	case content.BackgroundPrimaryLight:
		return "bg-primary-light"
	case content.BackgroundSecondaryLight:
		return "bg-secondary-light"
	case content.BackgroundAccentLight:
		return "bg-accent-light"
	default:
		return "bg-gray-50"
	}
}

// htmlWriter writes markup and remembers the first write error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

// attr writes ` name="value"` with the value escaped.
func (h *htmlWriter) attr(name, value string) {
	h.raw(" " + name + `="`)
	h.text(value)
	h.raw(`"`)
}
