package api

import (
	"context"
	"net/http"
	"strings"

	"kycflow/internal/auth"
	"kycflow/internal/ws"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	Subprotocols: []string{"jwt"},
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (d Dependencies) wsHandler(w http.ResponseWriter, r *http.Request) {
	if d.Hub == nil {
		d.Log.Error("WebSocket hub not initialized")
		http.Error(w, "WebSocket hub not initialized", http.StatusInternalServerError)
		return
	}

	// Anonymous connections are accepted but admitted to no channel
	actorID := d.actorFromHandshake(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.Log.Error("Failed to upgrade connection", zap.Error(err))
		return
	}
	d.Log.Debug("WebSocket connected", zap.String("actor_id", actorID), zap.String("remote", r.RemoteAddr))

	wsConn := ws.NewConn(conn, d.Hub, actorID)
	d.Hub.Register(wsConn)

	go wsConn.WritePump()
	go wsConn.ReadPump()
}

// actorFromHandshake accepts the token as a query parameter when the
// client negotiates the jwt subprotocol, since browsers cannot set headers.
func (d Dependencies) actorFromHandshake(r *http.Request) string {
	if actorID := auth.GetActorID(r.Context()); actorID != "" {
		return actorID
	}
	for _, subprotocol := range websocket.Subprotocols(r) {
		if subprotocol != "jwt" {
			continue
		}
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			tokenString = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}
		if tokenString == "" {
			return ""
		}
		actorID, err := d.JWT.Parse(tokenString)
		if err != nil {
			d.Log.Debug("Rejected websocket token", zap.Error(err))
			return ""
		}
		return actorID
	}
	return ""
}

// authorizeChannel admits the caller's own applicant and worker channels, and
// the channel of any case the caller may read over HTTP.
func (d Dependencies) authorizeChannel(ctx context.Context, userID, channel string) bool {
	if ws.OwnChannels(ctx, userID, channel) {
		return true
	}
	caseID, ok := strings.CutPrefix(channel, "case:")
	if !ok || caseID == "" || userID == "" {
		return false
	}
	actor, err := d.Permissions.Actor(ctx, userID)
	if err != nil {
		return false
	}
	c, err := d.Cases.GetCase(ctx, caseID)
	if err != nil {
		return false
	}
	return canSee(actor, c)
}
