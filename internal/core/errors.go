package core

import "errors"

var (
	ErrSpaceNotFound    = errors.New("space not found")
	ErrSongNotFound     = errors.New("song not found")
	ErrNotAdmin         = errors.New("actor is not an admin")
	ErrAlreadyVoted     = errors.New("already voted")
	ErrEmptyLeaderboard = errors.New("leaderboard is empty")
	ErrNoCurrentSong    = errors.New("no current song")
)
