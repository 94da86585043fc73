package handlers

import (
	"net/http"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// HandleQR renders a QR code of the join link for a room so the host can
// put it on a shared screen.
func (ctx *Context) HandleQR(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimPrefix(r.URL.Path, "/qr/"))
	if !ctx.Rooms.Exists(code) {
		http.Error(w, "Room not found", http.StatusNotFound)
		return
	}

	png, err := qrcode.Encode(ctx.PublicURL+"/join/"+code, qrcode.Medium, 256)
	if err != nil {
		ctx.Log.Error().Err(err).Str("room", code).Msg("qr encoding failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

// HandleHealthz is a liveness probe
func (ctx *Context) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
