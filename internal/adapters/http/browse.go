package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/zylo-music/zylo/internal/adapters/catalog"
	"github.com/zylo-music/zylo/internal/core"
)

func artistsHandler(store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		artists, err := store.Artists(c.Request.Context())
		if err != nil {
			log.Error().Err(err).Str("module", "http.browse").Msg("list artists")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "catalog error"})
			return
		}
		c.JSON(http.StatusOK, artists)
	}
}

func albumsHandler(store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		albums, err := store.Albums(c.Request.Context(), c.Param("artist"))
		if err != nil {
			log.Error().Err(err).Str("module", "http.browse").Msg("list albums")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "catalog error"})
			return
		}
		c.JSON(http.StatusOK, albums)
	}
}

func songsHandler(store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		songs, err := store.Songs(c.Request.Context(), c.Param("artist"), c.Param("album"))
		if err != nil {
			log.Error().Err(err).Str("module", "http.browse").Msg("list songs")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "catalog error"})
			return
		}
		c.JSON(http.StatusOK, songs)
	}
}

// recommendHandler ranks songs sharing tags with the seed song.
func recommendHandler(store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			SongID int64 `json:"song_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.SongID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Missing song_id"})
			return
		}
		rec, err := store.Recommend(c.Request.Context(), req.SongID)
		if errors.Is(err, core.ErrSongNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "No tags found"})
			return
		}
		if err != nil {
			log.Error().Err(err).Str("module", "http.browse").Int64("song", req.SongID).Msg("recommend")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "catalog error"})
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}
