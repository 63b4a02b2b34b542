package ws

// Inbound payloads, one struct per client event. Numeric fields that the
// protocol treats as required are pointers so a missing field can be told
// apart from a zero and dropped silently.

type spaceUserPayload struct {
	Space string `json:"space"`
	User  string `json:"user"`
}

type messagePayload struct {
	Space string `json:"space"`
	User  string `json:"user"`
	Msg   string `json:"msg"`
}

type suggestPayload struct {
	Space string `json:"space"`
	Song  string `json:"song"`
	User  string `json:"user"`
}

type votePayload struct {
	Space  string `json:"space"`
	SongID *int64 `json:"songId"`
	User   string `json:"user"`
}

type actorPayload struct {
	Space string `json:"space"`
	Actor string `json:"actor"`
}

type seekPayload struct {
	Space string   `json:"space"`
	Actor string   `json:"actor"`
	Time  *float64 `json:"time"`
}

type deletePayload struct {
	Space  string `json:"space"`
	SongID *int64 `json:"songId"`
	Actor  string `json:"actor"`
}

type kickPayload struct {
	Space string `json:"space"`
	User  string `json:"user"`
	Actor string `json:"actor"`
}

type finishedPayload struct {
	Space string `json:"space"`
	Song  struct {
		ID *int64 `json:"id"`
	} `json:"song"`
}

type spacePayload struct {
	Space string `json:"space"`
}
