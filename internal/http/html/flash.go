package html

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	FlashSuccessType FlashType = "success"
	FlashErrorType   FlashType = "error"

	flashCookie = "flash" // name of flash cookie
)

type FlashType string

func (f FlashType) String() string { return string(f) }

// Flash is a Flash message for the web UI
type Flash struct {
	Type    FlashType
	Message string
}

// FlashStack is a stack of flash messages
type FlashStack []Flash

func (s *FlashStack) Push(t FlashType, msg string) {
	*s = append(*s, Flash{t, msg})
}

func (s FlashStack) Write(w http.ResponseWriter) {
	js, err := json.Marshal(s)
	if err != nil {
		// upstream middleware catches the panic
		panic(fmt.Sprintf("marshalling flash messages to json: %v", err))
	}
	SetCookie(w, flashCookie, base64.URLEncoding.EncodeToString(js), nil)
}

// FlashSuccess helper writes a single flash success message
func FlashSuccess(w http.ResponseWriter, msg string) {
	FlashStack{{Type: FlashSuccessType, Message: msg}}.Write(w)
}

// FlashError helper writes a single flash error message
func FlashError(w http.ResponseWriter, msg string) {
	FlashStack{{Type: FlashErrorType, Message: msg}}.Write(w)
}

// readFlashes reads the flash messages sent with the request. Malformed
// cookies are ignored.
func readFlashes(r *http.Request) []Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	decoded, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(decoded, &flashes); err != nil {
		return nil
	}
	return flashes
}

// purgeFlashes instructs the browser to delete the flash cookie once the page
// displaying its messages has been rendered.
func purgeFlashes(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(flashCookie); err == nil {
		SetCookie(w, flashCookie, "", &time.Time{})
	}
}
