package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/zylo-music/zylo/internal/app"
	"github.com/zylo-music/zylo/internal/core"
	"github.com/zylo-music/zylo/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	Hub       *Hub
	Party     *app.Coordinator
	ReadLimit int64
}

// HandleWS upgrades the request and runs the connection until it closes.
// Disconnect cleanup sweeps every space's roster.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	sock, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("upgrade failed")
		return
	}
	if ctl.ReadLimit > 0 {
		sock.SetReadLimit(ctl.ReadLimit)
	}

	id := core.ConnID(uuid.NewString())
	conn := newConn(sock)
	ctl.Hub.Add(id, conn)
	log.Info().Str("module", "ws").Str("conn", string(id)).Msg("connected")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go ctl.writePump(ctx, conn)
	ctl.readPump(ctx, id, conn)

	ctl.Hub.Remove(id)
	ctl.Party.Disconnect(id)
	log.Info().Str("module", "ws").Str("conn", string(id)).Msg("disconnected")
}

func (ctl *Controller) writePump(ctx context.Context, c *Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.sock.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("set write deadline")
				return
			}
			if err := c.sock.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("write failed")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, id core.ConnID, c *Conn) {
	defer c.Close()
	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.sock.ReadMessage()
			if err != nil {
				return
			}
			ctl.dispatch(ctx, id, data)
		}
	}
}

// dispatch routes one inbound frame. A malformed frame is logged and
// skipped; it never terminates the connection loop.
func (ctl *Controller) dispatch(ctx context.Context, id core.ConnID, data []byte) {
	var env struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "ws").Str("conn", string(id)).Msg("bad frame")
		return
	}

	switch env.Event {
	case "create_space":
		var p spaceUserPayload
		if decode(id, env.Data, &p) {
			ctl.Party.CreateSpace(id, domain.SpaceName(p.Space), p.User)
		}
	case "join_space":
		var p spaceUserPayload
		if decode(id, env.Data, &p) {
			ctl.Party.JoinSpace(id, domain.SpaceName(p.Space), p.User)
		}
	case "get_spaces":
		ctl.Party.ListSpaces(id)
	case "send_message":
		var p messagePayload
		if decode(id, env.Data, &p) {
			ctl.Party.SendMessage(domain.SpaceName(p.Space), p.User, p.Msg)
		}
	case "suggest_song":
		var p suggestPayload
		if decode(id, env.Data, &p) {
			ctl.Party.Suggest(ctx, id, domain.SpaceName(p.Space), p.Song, p.User)
		}
	case "upvote_song":
		var p votePayload
		if decode(id, env.Data, &p) && p.SongID != nil {
			ctl.Party.Upvote(domain.SpaceName(p.Space), *p.SongID, p.User)
		}
	case "start_playlist":
		var p actorPayload
		if decode(id, env.Data, &p) {
			ctl.Party.StartPlaylist(domain.SpaceName(p.Space), p.Actor)
		}
	case "play_song":
		var p actorPayload
		if decode(id, env.Data, &p) {
			ctl.Party.Play(domain.SpaceName(p.Space), p.Actor)
		}
	case "pause_song":
		var p actorPayload
		if decode(id, env.Data, &p) {
			ctl.Party.Pause(domain.SpaceName(p.Space), p.Actor)
		}
	case "seek":
		var p seekPayload
		if decode(id, env.Data, &p) && p.Time != nil {
			ctl.Party.Seek(id, domain.SpaceName(p.Space), p.Actor, *p.Time)
		}
	case "delete_song":
		var p deletePayload
		if decode(id, env.Data, &p) && p.SongID != nil {
			ctl.Party.Delete(domain.SpaceName(p.Space), *p.SongID, p.Actor)
		}
	case "kick_user":
		var p kickPayload
		if decode(id, env.Data, &p) {
			ctl.Party.Kick(domain.SpaceName(p.Space), p.Actor, p.User)
		}
	case "song_finished":
		var p finishedPayload
		if decode(id, env.Data, &p) && p.Song.ID != nil {
			ctl.Party.SongFinished(domain.SpaceName(p.Space), *p.Song.ID)
		}
	case "get_current_song_position":
		var p spacePayload
		if decode(id, env.Data, &p) {
			ctl.Party.PositionQuery(id, domain.SpaceName(p.Space))
		}
	default:
		log.Warn().Str("module", "ws").Str("event", env.Event).Msg("unknown event")
	}
}

func decode(id core.ConnID, data json.RawMessage, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		log.Warn().Err(err).Str("module", "ws").Str("conn", string(id)).Msg("bad payload")
		return false
	}
	return true
}
