/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
	"golang.org/x/time/rate"

	"github.com/Seednode/tandem/internal/room"
)

const qrSize = 320

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveSocket upgrades the request and hands the connection to the broker.
// Connections live as long as ctx, not the request.
func serveSocket(ctx context.Context, cfg *Config, b *room.Broker, log zerolog.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Str("remote", realIP(r)).Msg("websocket upgrade failed")
			return
		}

		client := room.NewClient(conn, rate.Limit(cfg.rateLimit), cfg.rateBurst, log)

		log.Info().Str("conn", client.ID()).Str("remote", realIP(r)).Msg("SERVE: websocket opened")

		client.Serve(ctx, b)

		log.Info().Str("conn", client.ID()).Msg("SERVE: websocket closed")
	}
}

// requestScheme respects TLS and X-Forwarded-Proto.
func requestScheme(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme
}

// joinURL is the address a partner opens to land in the room.
func joinURL(cfg *Config, r *http.Request, code string) string {
	u := url.URL{
		Scheme:   requestScheme(r),
		Host:     r.Host,
		Path:     cfg.prefix + "/tandem",
		RawQuery: url.Values{"room": {code}}.Encode(),
	}
	return u.String()
}

// serveQR renders the join URL of a live room as a PNG.
func serveQR(cfg *Config, b *room.Broker, log zerolog.Logger, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		start := time.Now()

		code := room.NormalizeCode(ps.ByName("code"))
		if !room.ValidCode(code) {
			http.Error(w, "invalid room code", http.StatusBadRequest)
			return
		}
		if _, ok := b.Lookup(code); !ok {
			http.Error(w, room.ErrRoomNotFound.Error(), http.StatusNotFound)
			return
		}

		png, err := qrcode.Encode(joinURL(cfg, r, code), qrcode.Medium, qrSize)
		if err != nil {
			log.Error().Err(err).Str("room", code).Msg("qr generation failed")
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		written, err := w.Write(png)
		if err != nil {
			errs <- err

			return
		}

		logServed(log, "QR code for "+code, written, r, start)
	}
}

// serveKinds lists the game kinds the client can offer.
func serveKinds(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		securityHeaders(cfg, w)

		if err := json.NewEncoder(w).Encode(room.Kinds()); err != nil {
			errs <- err
		}
	}
}

// registerTandem sets up routes so that:
//   - $path            → client page, ?room=CODE pre-fills the join form
//   - $path/ws         → websocket for players and admins
//   - $path/qr/:code   → PNG QR code for a room's join URL
//   - $path/kinds      → JSON list of game kinds
func registerTandem(ctx context.Context, cfg *Config, path string, mux *httprouter.Router, b *room.Broker, log zerolog.Logger, errs chan<- error) {
	path = cfg.prefix + "/" + strings.Trim(path, "/")

	mux.GET(path, serveClient(cfg, log, errs))
	mux.GET(path+"/ws", serveSocket(ctx, cfg, b, log))
	mux.GET(path+"/qr/:code", serveQR(cfg, b, log, errs))
	mux.GET(path+"/kinds", serveKinds(cfg, errs))
}
