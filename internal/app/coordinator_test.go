package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/zylo-music/zylo/internal/core"
	"github.com/zylo-music/zylo/internal/domain"
)

type sentEvent struct {
	Target  string
	Event   string
	Payload any
}

// fakeHub satisfies both the publisher and the membership port.
type fakeHub struct {
	events []sentEvent
	joined map[string][]core.ConnID
}

func newFakeHub() *fakeHub {
	return &fakeHub{joined: make(map[string][]core.ConnID)}
}

func (f *fakeHub) ToSpace(space domain.SpaceName, event string, payload any) {
	f.events = append(f.events, sentEvent{Target: "space:" + string(space), Event: event, Payload: payload})
}

func (f *fakeHub) ToConn(conn core.ConnID, event string, payload any) {
	f.events = append(f.events, sentEvent{Target: "conn:" + string(conn), Event: event, Payload: payload})
}

func (f *fakeHub) ToAll(event string, payload any) {
	f.events = append(f.events, sentEvent{Target: "all", Event: event, Payload: payload})
}

func (f *fakeHub) Join(conn core.ConnID, space domain.SpaceName) {
	f.joined[string(space)] = append(f.joined[string(space)], conn)
}

func (f *fakeHub) Leave(conn core.ConnID, space domain.SpaceName) {}

func (f *fakeHub) find(event string) *sentEvent {
	for i := range f.events {
		if f.events[i].Event == event {
			return &f.events[i]
		}
	}
	return nil
}

type fakeCatalog struct {
	songs map[string]*domain.CatalogSong
	err   error
}

func (f *fakeCatalog) LookupTitle(ctx context.Context, title string) (*domain.CatalogSong, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.songs[title]; ok {
		return s, nil
	}
	return nil, core.ErrSongNotFound
}

type fakeMedia struct{}

func (fakeMedia) StreamURL(catalogID int64) string {
	return fmt.Sprintf("/play/%d", catalogID)
}

func newTestCoordinator(cat core.Catalog) (*Coordinator, *fakeHub) {
	hub := newFakeHub()
	c := &Coordinator{
		Spaces:  core.NewRegistry(),
		Catalog: cat,
		Media:   fakeMedia{},
		Pub:     hub,
		Rooms:   hub,
	}
	return c, hub
}

func TestCreateJoinSuggest(t *testing.T) {
	cat := &fakeCatalog{songs: map[string]*domain.CatalogSong{
		"yesterday": {ID: 7, Title: "Yesterday", Artist: "The Beatles"},
	}}
	c, hub := newTestCoordinator(cat)

	c.CreateSpace("c1", "partyA", "alice")
	s, ok := c.Spaces.Get("partyA")
	if !ok {
		t.Fatalf("space not created")
	}
	if !s.IsAdmin("alice") {
		t.Errorf("creator is not admin")
	}
	if hub.find(core.EvSpacesList) == nil {
		t.Errorf("spaces_list not broadcast on creation")
	}

	c.JoinSpace("c2", "partyA", "bob")
	members := s.Members()
	if len(members) != 2 || members[0] != "alice" || members[1] != "bob" {
		t.Errorf("members = %v, want [alice bob] in join order", members)
	}

	c.Suggest(context.Background(), "c2", "partyA", "Yesterday", "bob")
	lb := s.Leaderboard()
	if len(lb) != 1 {
		t.Fatalf("leaderboard = %v, want one entry", lb)
	}
	e := lb[0]
	if e.ID != 1 || e.Name != "Yesterday" || e.Votes != 0 || e.SubmittedBy != "bob" || e.CatalogID != 7 {
		t.Errorf("entry = %+v", e)
	}
}

func TestJoinSpace_UnknownSpace(t *testing.T) {
	c, hub := newTestCoordinator(&fakeCatalog{})

	c.JoinSpace("c1", "nowhere", "bob")
	ev := hub.find(core.EvError)
	if ev == nil || ev.Target != "conn:c1" {
		t.Fatalf("expected targeted error, got %v", hub.events)
	}
	if _, ok := c.Spaces.Get("nowhere"); ok {
		t.Errorf("join created a space")
	}
}

func TestSuggest_CatalogMissAllocatesNothing(t *testing.T) {
	c, hub := newTestCoordinator(&fakeCatalog{songs: map[string]*domain.CatalogSong{}})
	c.CreateSpace("c1", "partyA", "alice")
	hub.events = nil

	c.Suggest(context.Background(), "c1", "partyA", "Unknown Tune", "alice")

	ev := hub.find(core.EvSongNotFound)
	if ev == nil || ev.Target != "conn:c1" {
		t.Fatalf("expected song_not_found to originator, got %v", hub.events)
	}
	s, _ := c.Spaces.Get("partyA")
	if len(s.Leaderboard()) != 0 {
		t.Errorf("miss mutated the leaderboard")
	}
	// The next successful suggestion must get id 1: the miss did not
	// burn an id.
	c.Catalog.(*fakeCatalog).songs["hit"] = &domain.CatalogSong{ID: 9, Title: "Hit"}
	c.Suggest(context.Background(), "c1", "partyA", "Hit", "alice")
	if got := s.Leaderboard()[0].ID; got != 1 {
		t.Errorf("first allocated id = %d, want 1", got)
	}
}

func TestSuggest_UpstreamErrorNotifiesSpace(t *testing.T) {
	c, hub := newTestCoordinator(&fakeCatalog{err: errors.New("connection refused")})
	c.CreateSpace("c1", "partyA", "alice")
	hub.events = nil

	c.Suggest(context.Background(), "c1", "partyA", "Anything", "alice")

	ev := hub.find(core.EvChatMessage)
	if ev == nil || ev.Target != "space:partyA" {
		t.Fatalf("expected space-visible error notice, got %v", hub.events)
	}
	s, _ := c.Spaces.Get("partyA")
	if len(s.Leaderboard()) != 0 {
		t.Errorf("upstream error mutated the leaderboard")
	}
}

func TestSuggest_NormalizesTitle(t *testing.T) {
	cat := &fakeCatalog{songs: map[string]*domain.CatalogSong{
		"yesterday": {ID: 7, Title: "Yesterday", Artist: "The Beatles"},
	}}
	c, _ := newTestCoordinator(cat)
	c.CreateSpace("c1", "partyA", "alice")

	c.Suggest(context.Background(), "c1", "partyA", "  YESTERDAY  ", "alice")
	s, _ := c.Spaces.Get("partyA")
	lb := s.Leaderboard()
	if len(lb) != 1 || lb[0].Name != "Yesterday" {
		t.Errorf("leaderboard = %v, want catalog-cased title", lb)
	}
}

func TestUpvote_UnknownSpaceIsSilent(t *testing.T) {
	c, hub := newTestCoordinator(&fakeCatalog{})
	c.Upvote("ghost", 1, "alice")
	if len(hub.events) != 0 {
		t.Errorf("events published for unknown space: %v", hub.events)
	}
}

func TestPositionQuery(t *testing.T) {
	c, hub := newTestCoordinator(&fakeCatalog{})

	c.PositionQuery("c1", "ghost")
	ev := hub.find(core.EvSeekUpdate)
	if ev == nil || ev.Target != "conn:c1" {
		t.Fatalf("expected private seek_update, got %v", hub.events)
	}
	if got := ev.Payload.(core.TimePayload).Time; got != 0 {
		t.Errorf("idle position = %v, want 0", got)
	}
}

func TestValidation_MissingFieldsAreSilent(t *testing.T) {
	c, hub := newTestCoordinator(&fakeCatalog{})

	c.SendMessage("", "alice", "hi")
	c.Suggest(context.Background(), "c1", "partyA", "", "alice")
	c.Upvote("partyA", 1, "")
	c.Pause("partyA", "")
	c.StartPlaylist("", "alice")

	if len(hub.events) != 0 {
		t.Errorf("validation failures published events: %v", hub.events)
	}
}
