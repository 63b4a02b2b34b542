package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/zylo-music/zylo/internal/adapters/catalog"
	"github.com/zylo-music/zylo/internal/adapters/ws"
	"github.com/zylo-music/zylo/internal/config"
	"github.com/zylo-music/zylo/internal/karaoke"
)

func SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	ctl *ws.Controller,
	store *catalog.Store,
	kara *karaoke.Client,
) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
	}

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	r.GET("/ws", func(c *gin.Context) {
		ctl.HandleWS(ctx, c)
	})

	r.GET("/play/:id", streamHandler(store))
	r.GET("/artists", artistsHandler(store))
	r.GET("/albums/:artist", albumsHandler(store))
	r.GET("/songs/:artist/:album", songsHandler(store))
	r.POST("/autopath_recommend", recommendHandler(store))
	r.POST("/generate_karaoke", karaokeHandler(kara))

	return r
}

func karaokeHandler(kara *karaoke.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			SongName string `json:"song_name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "bad request"})
			return
		}
		assets, err := kara.Ensure(c.Request.Context(), req.SongName)
		if errors.Is(err, karaoke.ErrEmptyName) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Song name cannot be empty"})
			return
		}
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Str("song", req.SongName).Msg("karaoke generation failed")
			c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, assets)
	}
}
