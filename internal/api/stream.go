package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Stream pushes "votes" and "comments" server-sent events whenever the synchronizers see a change.
// It ends when the client goes away or a store subscription is lost.
func (h *Handler) Stream(c *gin.Context) {
	ctx := c.Request.Context()

	votes, err := h.votes.Observe(ctx)
	if err != nil {
		h.l.Warn("vote stream unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live updates unavailable"})
		return
	}
	comments, err := h.comments.Observe(ctx)
	if err != nil {
		h.l.Warn("comment stream unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live updates unavailable"})
		return
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case agg, ok := <-votes:
			if !ok {
				return false
			}
			c.SSEvent("votes", h.votesView(agg, true))
			return true
		case feed, ok := <-comments:
			if !ok {
				return false
			}
			c.SSEvent("comments", gin.H{"comments": feed})
			return true
		}
	})
}
