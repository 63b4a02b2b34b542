package http

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/zylo-music/zylo/internal/adapters/catalog"
)

// StreamResolver maps a catalog id to the play endpoint below. Clients
// never see the upstream storage location.
type StreamResolver struct {
	Base string
}

func (r StreamResolver) StreamURL(catalogID int64) string {
	return fmt.Sprintf("%s/play/%d", r.Base, catalogID)
}

// streamHandler proxies audio bytes from the upstream storage URL stored
// in the catalog, passing the Range header through so clients can seek.
func streamHandler(store *catalog.Store) gin.HandlerFunc {
	client := &http.Client{}
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid song id"})
			return
		}
		upstream, err := store.AudioURL(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Song not found"})
			return
		}

		req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, upstream, nil)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"detail": "bad upstream url"})
			return
		}
		if rng := c.GetHeader("Range"); rng != "" {
			req.Header.Set("Range", rng)
		}

		resp, err := client.Do(req)
		if err != nil {
			log.Error().Err(err).Str("module", "http.stream").Int64("song", id).Msg("upstream fetch failed")
			c.JSON(http.StatusBadGateway, gin.H{"detail": "upstream fetch failed"})
			return
		}
		defer resp.Body.Close()

		c.Status(resp.StatusCode)
		c.Header("Accept-Ranges", "bytes")
		for _, h := range []string{"Content-Type", "Content-Length", "Content-Range"} {
			if v := resp.Header.Get(h); v != "" {
				c.Header(h, v)
			}
		}
		if _, err := io.Copy(c.Writer, resp.Body); err != nil {
			log.Debug().Err(err).Str("module", "http.stream").Int64("song", id).Msg("stream interrupted")
		}
	}
}
