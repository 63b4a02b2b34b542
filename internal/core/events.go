package core

import "github.com/zylo-music/zylo/internal/domain"

// Server -> client event names. These are the wire contract; clients
// subscribe by name.
const (
	EvSpacesList    = "spaces_list"
	EvUserList      = "user_list"
	EvLeaderboard   = "leaderboard"
	EvCurrentSong   = "current_song"
	EvAdminData     = "admin_data"
	EvChatMessage   = "chat_message"
	EvSongNotFound  = "song_not_found"
	EvTopSongUpdate = "top_song_update"
	EvSongPlaying   = "song_playing"
	EvSongPaused    = "song_paused"
	EvSeekUpdate    = "seek_update"
	EvProgress      = "progress"
	EvUserKicked    = "user_kicked"
	EvError         = "error"
)

type SongPayload struct {
	Song *domain.QueueEntry `json:"song"`
}

type TopSongPayload struct {
	TopSong *domain.QueueEntry `json:"top_song"`
}

type AdminPayload struct {
	IsAdmin bool `json:"isAdmin"`
}

type ActorPayload struct {
	Actor string `json:"actor"`
}

type TimePayload struct {
	Time float64 `json:"time"`
}

type KickedPayload struct {
	User string `json:"user"`
}

type NotFoundPayload struct {
	Reason string `json:"reason"`
}

type ErrorPayload struct {
	Msg string `json:"msg"`
}
