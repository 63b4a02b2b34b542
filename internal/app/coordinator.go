// Package app coordinates inbound client events: it validates payloads,
// performs catalog IO before any space lock is taken, and invokes the
// space operations that mutate state and publish deltas.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/zylo-music/zylo/internal/core"
	"github.com/zylo-music/zylo/internal/domain"
)

type Coordinator struct {
	Spaces  *core.Registry
	Catalog core.Catalog
	Media   core.MediaResolver
	Pub     core.Publisher
	Rooms   core.Membership
}

// CreateSpace ensures the space (seeding the creator as admin when it is
// new), subscribes the connection, and replies with the space snapshot.
func (c *Coordinator) CreateSpace(conn core.ConnID, space domain.SpaceName, user string) {
	if space == "" || user == "" {
		c.Pub.ToConn(conn, core.EvError, core.ErrorPayload{Msg: "create_space missing params"})
		return
	}
	s, _ := c.Spaces.Ensure(space, user)
	c.Rooms.Join(conn, space)
	c.Pub.ToAll(core.EvSpacesList, c.Spaces.Names())
	s.AddMember(c.Pub, conn, user)
}

// JoinSpace adds the user to an existing space's roster. Unlike
// CreateSpace it never creates the space.
func (c *Coordinator) JoinSpace(conn core.ConnID, space domain.SpaceName, user string) {
	if space == "" || user == "" {
		c.Pub.ToConn(conn, core.EvError, core.ErrorPayload{Msg: "join_space missing space/user"})
		return
	}
	s, ok := c.Spaces.Get(space)
	if !ok {
		c.Pub.ToConn(conn, core.EvError, core.ErrorPayload{Msg: fmt.Sprintf("Space %s does not exist", space)})
		return
	}
	c.Rooms.Join(conn, space)
	s.AddMember(c.Pub, conn, user)
}

func (c *Coordinator) ListSpaces(conn core.ConnID) {
	c.Pub.ToConn(conn, core.EvSpacesList, c.Spaces.Names())
}

// SendMessage relays a chat line verbatim to the space.
func (c *Coordinator) SendMessage(space domain.SpaceName, user, msg string) {
	if space == "" || user == "" {
		return
	}
	c.Pub.ToSpace(space, core.EvChatMessage, domain.ChatMessage{User: user, Msg: msg})
}

// Suggest resolves the title against the catalog and, on a match, appends
// a zero-vote entry with a freshly allocated process-wide id. A catalog
// miss is reported to the originator only and allocates nothing.
func (c *Coordinator) Suggest(ctx context.Context, conn core.ConnID, space domain.SpaceName, rawTitle, user string) {
	if space == "" || rawTitle == "" || user == "" {
		return
	}
	title := domain.NormalizeTitle(rawTitle)

	song, err := c.Catalog.LookupTitle(ctx, title)
	if errors.Is(err, core.ErrSongNotFound) {
		c.Pub.ToConn(conn, core.EvSongNotFound, core.NotFoundPayload{
			Reason: fmt.Sprintf("Song '%s' not found in database.", rawTitle),
		})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "app").Str("title", title).Msg("catalog lookup failed")
		c.Pub.ToSpace(space, core.EvChatMessage, domain.ChatMessage{
			User: domain.SystemUser,
			Msg:  fmt.Sprintf("DB error while searching for '%s'.", rawTitle),
		})
		return
	}

	s, _ := c.Spaces.Ensure(space, "")
	entry := &domain.QueueEntry{
		ID:          c.Spaces.NextEntryID(),
		Name:        song.Title,
		Artist:      song.Artist,
		SubmittedBy: user,
		CatalogID:   song.ID,
	}
	s.Suggest(c.Pub, entry)
}

func (c *Coordinator) Upvote(space domain.SpaceName, songID int64, voter string) {
	if space == "" || voter == "" {
		return
	}
	s, ok := c.Spaces.Get(space)
	if !ok {
		return
	}
	_ = s.Upvote(c.Pub, songID, voter)
}

func (c *Coordinator) Delete(space domain.SpaceName, songID int64, actor string) {
	if space == "" {
		return
	}
	s, ok := c.Spaces.Get(space)
	if !ok {
		return
	}
	_ = s.Delete(c.Pub, c.Media, songID, actor)
}

func (c *Coordinator) Kick(space domain.SpaceName, actor, target string) {
	if space == "" || target == "" {
		return
	}
	s, ok := c.Spaces.Get(space)
	if !ok {
		return
	}
	_ = s.Kick(c.Pub, actor, target)
}

func (c *Coordinator) StartPlaylist(space domain.SpaceName, actor string) {
	if space == "" || actor == "" {
		return
	}
	s, ok := c.Spaces.Get(space)
	if !ok {
		return
	}
	_ = s.StartPlaylist(c.Pub, actor)
}

func (c *Coordinator) Play(space domain.SpaceName, actor string) {
	if space == "" || actor == "" {
		return
	}
	s, ok := c.Spaces.Get(space)
	if !ok {
		return
	}
	_ = s.Play(c.Pub, c.Media, actor)
}

func (c *Coordinator) Pause(space domain.SpaceName, actor string) {
	if space == "" || actor == "" {
		return
	}
	s, ok := c.Spaces.Get(space)
	if !ok {
		return
	}
	_ = s.Pause(c.Pub, actor)
}

func (c *Coordinator) Seek(conn core.ConnID, space domain.SpaceName, actor string, t float64) {
	if space == "" {
		return
	}
	s, ok := c.Spaces.Get(space)
	if !ok {
		return
	}
	_ = s.Seek(c.Pub, conn, actor, t)
}

func (c *Coordinator) SongFinished(space domain.SpaceName, songID int64) {
	if space == "" {
		return
	}
	s, ok := c.Spaces.Get(space)
	if !ok {
		return
	}
	s.SongFinished(c.Pub, songID)
}

// PositionQuery replies privately with the elapsed seconds of the loaded
// track, or 0 when idle.
func (c *Coordinator) PositionQuery(conn core.ConnID, space domain.SpaceName) {
	var pos float64
	if s, ok := c.Spaces.Get(space); ok {
		pos = s.Position()
	}
	c.Pub.ToConn(conn, core.EvSeekUpdate, core.TimePayload{Time: pos})
}

// Disconnect sweeps every space's roster for the gone connection.
func (c *Coordinator) Disconnect(conn core.ConnID) {
	c.Spaces.DropConnection(c.Pub, conn)
}
