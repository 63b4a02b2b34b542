package domain

type SpaceName string

const MaxSpaceNameLen = 36

// SystemUser is the author of server-generated chat notices.
const SystemUser = "SYSTEM"

// ChatMessage is relayed verbatim to every member of a space.
type ChatMessage struct {
	User string `json:"user"`
	Msg  string `json:"msg"`
}

// KaraokeAssets point at already-hosted outputs of the external
// separation/alignment service.
type KaraokeAssets struct {
	DisplayName     string `json:"display_name"`
	VocalsURL       string `json:"vocals_url"`
	InstrumentalURL string `json:"instrumental_url"`
	LyricsURL       string `json:"lyrics_url"`
}
