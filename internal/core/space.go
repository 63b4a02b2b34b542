package core

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/zylo-music/zylo/internal/domain"
)

type rosterEntry struct {
	conn ConnID
	name string
}

// Space is the threadsafe in-memory state of one party session: roster,
// vote-ordered leaderboard and playback. Every compound operation runs
// under the space mutex and publishes its deltas before releasing it, so
// concurrent handlers never observe a half-applied mutation and clients
// see each handler's events in order.
type Space struct {
	name domain.SpaceName

	mu          sync.Mutex
	roster      []rosterEntry
	admins      map[string]struct{}
	leaderboard []*domain.QueueEntry
	votes       map[int64]map[string]struct{}
	current     *domain.QueueEntry
	playing     bool
	position    float64
}

func newSpace(name domain.SpaceName, creator string) *Space {
	s := &Space{
		name:        name,
		admins:      make(map[string]struct{}),
		leaderboard: make([]*domain.QueueEntry, 0),
		votes:       make(map[int64]map[string]struct{}),
	}
	if creator != "" {
		s.admins[creator] = struct{}{}
	}
	return s
}

func (s *Space) Name() domain.SpaceName { return s.name }

func (s *Space) IsAdmin(user string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.admins[user]
	return ok
}

// resort keeps the leaderboard ordered by descending votes. The sort is
// stable, so entries with equal votes keep their suggestion order.
func (s *Space) resort() {
	sort.SliceStable(s.leaderboard, func(i, j int) bool {
		return s.leaderboard[i].Votes > s.leaderboard[j].Votes
	})
}

// memberNames returns display names in join order, collapsing duplicate
// names from reconnects.
func (s *Space) memberNames() []string {
	seen := make(map[string]struct{}, len(s.roster))
	names := make([]string, 0, len(s.roster))
	for _, e := range s.roster {
		if _, ok := seen[e.name]; ok {
			continue
		}
		seen[e.name] = struct{}{}
		names = append(names, e.name)
	}
	return names
}

// setCurrent switches the loaded track and resets the playback clock when
// the track actually changes.
func (s *Space) setCurrent(entry *domain.QueueEntry) {
	if entry == nil || s.current == nil || s.current.ID != entry.ID {
		s.position = 0
	}
	s.current = entry
}

// AddMember records the connection on the roster and replies with the
// space snapshot: member list and leaderboard to the space, current song
// and admin flag privately to the joiner.
func (s *Space) AddMember(pub Publisher, conn ConnID, user string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	present := false
	for _, e := range s.roster {
		if e.conn == conn {
			present = true
			break
		}
	}
	if !present {
		s.roster = append(s.roster, rosterEntry{conn: conn, name: user})
		log.Info().Str("module", "core.space").Str("space", string(s.name)).Str("user", user).Msg("member added")
	}
	_, isAdmin := s.admins[user]

	pub.ToSpace(s.name, EvUserList, s.memberNames())
	pub.ToSpace(s.name, EvLeaderboard, s.leaderboard)
	pub.ToConn(conn, EvCurrentSong, s.current)
	pub.ToConn(conn, EvAdminData, AdminPayload{IsAdmin: isAdmin})
}

// DropConn removes a disconnected connection from the roster. Reports
// whether the roster changed; the updated member list is published only
// then.
func (s *Space) DropConn(pub Publisher, conn ConnID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.roster[:0]
	removed := false
	for _, e := range s.roster {
		if e.conn == conn {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	s.roster = kept
	if removed {
		log.Info().Str("module", "core.space").Str("space", string(s.name)).Str("conn", string(conn)).Msg("member dropped")
		pub.ToSpace(s.name, EvUserList, s.memberNames())
	}
	return removed
}

// Kick removes every roster entry with the target display name. Admin
// gated; the kicked user's connection stays subscribed, matching the
// roster-only semantics of removal.
func (s *Space) Kick(pub Publisher, actor, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.admins[actor]; !ok {
		pub.ToSpace(s.name, EvChatMessage, domain.ChatMessage{
			User: domain.SystemUser,
			Msg:  fmt.Sprintf("%s is not authorized to remove users.", actor),
		})
		return ErrNotAdmin
	}

	kept := s.roster[:0]
	removed := false
	for _, e := range s.roster {
		if e.name == target {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	s.roster = kept
	if !removed {
		return nil
	}
	log.Info().Str("module", "core.space").Str("space", string(s.name)).Str("user", target).Str("actor", actor).Msg("member kicked")
	pub.ToSpace(s.name, EvUserKicked, KickedPayload{User: target})
	pub.ToSpace(s.name, EvUserList, s.memberNames())
	pub.ToSpace(s.name, EvChatMessage, domain.ChatMessage{
		User: domain.SystemUser,
		Msg:  fmt.Sprintf("%s was removed by %s", target, actor),
	})
	return nil
}

// Suggest appends a freshly resolved catalog match to the leaderboard with
// zero votes and broadcasts the new standings.
func (s *Space) Suggest(pub Publisher, entry *domain.QueueEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leaderboard = append(s.leaderboard, entry)
	s.votes[entry.ID] = make(map[string]struct{})
	s.resort()
	log.Info().Str("module", "core.space").Str("space", string(s.name)).Int64("entry", entry.ID).Str("user", entry.SubmittedBy).Msg("song suggested")

	pub.ToSpace(s.name, EvLeaderboard, s.leaderboard)
	pub.ToSpace(s.name, EvChatMessage, domain.ChatMessage{
		User: entry.SubmittedBy,
		Msg:  fmt.Sprintf("Suggested: %s", entry.Name),
	})
	var top *domain.QueueEntry
	if len(s.leaderboard) > 0 {
		top = s.leaderboard[0]
	}
	pub.ToSpace(s.name, EvTopSongUpdate, TopSongPayload{TopSong: top})
}

// Upvote adds the voter to the entry's vote set once. A repeated vote is a
// normal idempotent outcome, not a failure: state is untouched and the
// space is told. While the space is actively playing, a vote that pushes a
// different entry to the top promotes it to the current song.
func (s *Space) Upvote(pub Publisher, songID int64, voter string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if set, ok := s.votes[songID]; ok {
		if _, voted := set[voter]; voted {
			pub.ToSpace(s.name, EvChatMessage, domain.ChatMessage{
				User: domain.SystemUser,
				Msg:  fmt.Sprintf("%s, you already upvoted this song.", voter),
			})
			return ErrAlreadyVoted
		}
	}

	var entry *domain.QueueEntry
	for _, e := range s.leaderboard {
		if e.ID == songID {
			entry = e
			break
		}
	}
	if entry == nil {
		pub.ToSpace(s.name, EvChatMessage, domain.ChatMessage{
			User: domain.SystemUser,
			Msg:  fmt.Sprintf("Song ID %d not found in leaderboard.", songID),
		})
		return ErrSongNotFound
	}

	entry.Votes++
	if s.votes[songID] == nil {
		s.votes[songID] = make(map[string]struct{})
	}
	s.votes[songID][voter] = struct{}{}
	s.resort()

	pub.ToSpace(s.name, EvLeaderboard, s.leaderboard)
	pub.ToSpace(s.name, EvChatMessage, domain.ChatMessage{
		User: domain.SystemUser,
		Msg:  fmt.Sprintf("%s upvoted '%s'", voter, entry.Name),
	})

	// Promotion fires only while actively playing, never while paused
	// or idle.
	if s.playing {
		top := s.leaderboard[0]
		if s.current != nil && top.ID != s.current.ID {
			s.setCurrent(top)
			log.Info().Str("module", "core.space").Str("space", string(s.name)).Int64("entry", top.ID).Msg("top song promoted")
			pub.ToSpace(s.name, EvCurrentSong, top)
			pub.ToSpace(s.name, EvChatMessage, domain.ChatMessage{
				User: domain.SystemUser,
				Msg:  fmt.Sprintf("'%s' took the lead and is now playing!", top.Name),
			})
		}
	}
	return nil
}

// Delete removes an entry and its vote set. Deleting the loaded track
// promotes the new leaderboard top and keeps playing, or stops playback
// when nothing is left.
func (s *Space) Delete(pub Publisher, media MediaResolver, songID int64, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.admins[actor]; !ok {
		pub.ToSpace(s.name, EvChatMessage, domain.ChatMessage{
			User: domain.SystemUser,
			Msg:  fmt.Sprintf("%s is not authorized to delete songs.", actor),
		})
		return ErrNotAdmin
	}

	kept := s.leaderboard[:0]
	found := false
	for _, e := range s.leaderboard {
		if e.ID == songID {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	s.leaderboard = kept
	delete(s.votes, songID)
	if !found {
		return ErrSongNotFound
	}

	if s.current != nil && s.current.ID == songID {
		if len(s.leaderboard) > 0 {
			next := s.leaderboard[0]
			next.AudioURL = media.StreamURL(next.CatalogID)
			s.setCurrent(next)
			s.playing = true
			pub.ToSpace(s.name, EvCurrentSong, next)
			pub.ToSpace(s.name, EvSongPlaying, SongPayload{Song: next})
			pub.ToSpace(s.name, EvChatMessage, domain.ChatMessage{
				User: domain.SystemUser,
				Msg:  fmt.Sprintf("Next track: %s", next.Name),
			})
		} else {
			s.setCurrent(nil)
			s.playing = false
			pub.ToSpace(s.name, EvCurrentSong, nil)
			pub.ToSpace(s.name, EvSongPlaying, SongPayload{})
			pub.ToSpace(s.name, EvChatMessage, domain.ChatMessage{
				User: domain.SystemUser,
				Msg:  "Queue empty, nothing to play.",
			})
		}
	}

	log.Info().Str("module", "core.space").Str("space", string(s.name)).Int64("entry", songID).Str("actor", actor).Msg("song deleted")
	pub.ToSpace(s.name, EvLeaderboard, s.leaderboard)
	pub.ToSpace(s.name, EvChatMessage, domain.ChatMessage{
		User: domain.SystemUser,
		Msg:  fmt.Sprintf("%s removed a song.", actor),
	})
	return nil
}

// StartPlaylist loads the leaderboard top and transitions Idle -> Playing.
func (s *Space) StartPlaylist(pub Publisher, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.admins[actor]; !ok {
		pub.ToSpace(s.name, EvChatMessage, domain.ChatMessage{
			User: domain.SystemUser,
			Msg:  fmt.Sprintf("%s is not an admin and cannot start the playlist.", actor),
		})
		return ErrNotAdmin
	}
	if len(s.leaderboard) == 0 {
		pub.ToSpace(s.name, EvChatMessage, domain.ChatMessage{
			User: domain.SystemUser,
			Msg:  "No songs to start playing!",
		})
		return ErrEmptyLeaderboard
	}

	top := s.leaderboard[0]
	s.setCurrent(top)
	s.playing = true
	pub.ToSpace(s.name, EvCurrentSong, top)
	pub.ToSpace(s.name, EvSongPlaying, SongPayload{Song: top})
	pub.ToSpace(s.name, EvChatMessage, domain.ChatMessage{
		User: domain.SystemUser,
		Msg:  fmt.Sprintf("'%s' is now playing!", top.Name),
	})
	return nil
}

// Play resumes playback, loading the leaderboard top when nothing is
// loaded yet. The current entry gets a fresh stream URL before broadcast.
func (s *Space) Play(pub Publisher, media MediaResolver, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.admins[actor]; !ok {
		pub.ToSpace(s.name, EvChatMessage, domain.ChatMessage{
			User: domain.SystemUser,
			Msg:  fmt.Sprintf("%s is not an admin and cannot start songs.", actor),
		})
		return ErrNotAdmin
	}

	if len(s.leaderboard) == 0 {
		s.setCurrent(nil)
		s.playing = false
		pub.ToSpace(s.name, EvCurrentSong, nil)
		pub.ToSpace(s.name, EvSongPlaying, SongPayload{})
		pub.ToSpace(s.name, EvChatMessage, domain.ChatMessage{
			User: domain.SystemUser,
			Msg:  "No songs available to play.",
		})
		return ErrEmptyLeaderboard
	}

	if s.current == nil {
		s.setCurrent(s.leaderboard[0])
	}
	s.playing = true
	s.current.AudioURL = media.StreamURL(s.current.CatalogID)

	pub.ToSpace(s.name, EvSongPlaying, SongPayload{Song: s.current})
	pub.ToSpace(s.name, EvCurrentSong, s.current)
	pub.ToSpace(s.name, EvChatMessage, domain.ChatMessage{
		User: domain.SystemUser,
		Msg:  fmt.Sprintf("Now playing '%s'", s.current.Name),
	})
	return nil
}

// Pause transitions Playing -> Paused; the loaded track and position stay.
func (s *Space) Pause(pub Publisher, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.admins[actor]; !ok {
		pub.ToSpace(s.name, EvChatMessage, domain.ChatMessage{
			User: domain.SystemUser,
			Msg:  fmt.Sprintf("%s not authorized to pause.", actor),
		})
		return ErrNotAdmin
	}
	s.playing = false
	pub.ToSpace(s.name, EvSongPaused, ActorPayload{Actor: actor})
	pub.ToSpace(s.name, EvChatMessage, domain.ChatMessage{
		User: domain.SystemUser,
		Msg:  fmt.Sprintf("Playback paused by %s", actor),
	})
	return nil
}

// Seek jumps the playback clock. The rejection notice for a non-admin goes
// to the requester only; everything else about seeking is space-visible.
func (s *Space) Seek(pub Publisher, conn ConnID, actor string, t float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.admins[actor]; !ok {
		pub.ToConn(conn, EvChatMessage, domain.ChatMessage{
			User: domain.SystemUser,
			Msg:  "Only admins can seek.",
		})
		return ErrNotAdmin
	}
	if s.current == nil {
		return ErrNoCurrentSong
	}
	s.position = t
	pub.ToSpace(s.name, EvSeekUpdate, TimePayload{Time: t})
	pub.ToSpace(s.name, EvChatMessage, domain.ChatMessage{
		User: domain.SystemUser,
		Msg:  fmt.Sprintf("Skipped to %ds", int(t)),
	})
	return nil
}

// SongFinished handles a client-reported natural end of track: the entry
// leaves the leaderboard and playback rolls over to the new top, or goes
// idle. Not admin gated.
func (s *Space) SongFinished(pub Publisher, songID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.leaderboard[:0]
	for _, e := range s.leaderboard {
		if e.ID == songID {
			continue
		}
		kept = append(kept, e)
	}
	s.leaderboard = kept
	delete(s.votes, songID)

	if len(s.leaderboard) > 0 {
		next := s.leaderboard[0]
		s.setCurrent(next)
		s.playing = true
		pub.ToSpace(s.name, EvCurrentSong, next)
		pub.ToSpace(s.name, EvSongPlaying, SongPayload{Song: next})
	} else {
		s.setCurrent(nil)
		s.playing = false
		pub.ToSpace(s.name, EvCurrentSong, nil)
	}
}

// Tick advances the playback clock by dt seconds and reports progress.
// No-op unless the space is actively playing a loaded track.
func (s *Space) Tick(pub Publisher, dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing || s.current == nil {
		return
	}
	s.position += dt
	pub.ToSpace(s.name, EvProgress, TimePayload{Time: s.position})
}

// Position returns the elapsed seconds of the loaded track, or 0 when idle.
func (s *Space) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return 0
	}
	return s.position
}

// Leaderboard returns a copy of the current standings.
func (s *Space) Leaderboard() []*domain.QueueEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.QueueEntry, len(s.leaderboard))
	copy(out, s.leaderboard)
	return out
}

// Current returns the loaded entry (nil when idle) and the playing flag.
func (s *Space) Current() (*domain.QueueEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.playing
}

// Members returns display names in join order.
func (s *Space) Members() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memberNames()
}
