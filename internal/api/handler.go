package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/saxenaaman628/redis-farewell-vote/internal/controller"
	"github.com/saxenaaman628/redis-farewell-vote/internal/models"
)

type VoteFeed interface {
	Latest() (models.VoteAggregate, bool)
	CurrentClientChoice() models.Choice
	Observe(ctx context.Context) (<-chan models.VoteAggregate, error)
}

type CommentFeed interface {
	Latest() ([]models.Comment, bool)
	Observe(ctx context.Context) (<-chan []models.Comment, error)
}

type Submitter interface {
	Session() controller.Session
	Vote(choice models.Choice) error
	ProvideComment(text, name string, avatar []byte) error
	SkipComment(ctx context.Context) error
	ConfirmSubmit(ctx context.Context) error
}

// Handler is the presentation boundary: read-only views plus the four session actions.
type Handler struct {
	votes          VoteFeed
	comments       CommentFeed
	session        Submitter
	avatarMaxBytes int64
	l              *zap.Logger
}

func New(votes VoteFeed, comments CommentFeed, session Submitter, avatarMaxBytes int, l *zap.Logger) *Handler {
	return &Handler{
		votes:          votes,
		comments:       comments,
		session:        session,
		avatarMaxBytes: int64(avatarMaxBytes),
		l:              l,
	}
}

type VotesResponse struct {
	Accept        int           `json:"accept"`
	Reject        int           `json:"reject"`
	Total         int           `json:"total"`
	AcceptPercent int           `json:"acceptPercent"`
	RejectPercent int           `json:"rejectPercent"`
	UserVote      models.Choice `json:"userVote,omitempty"`
	Loaded        bool          `json:"loaded"`
}

type votePayload struct {
	Choice string `json:"choice" binding:"required"`
}

func (h *Handler) votesView(agg models.VoteAggregate, loaded bool) VotesResponse {
	accept, reject := models.Percentages(agg)
	return VotesResponse{
		Accept:        agg.Accept,
		Reject:        agg.Reject,
		Total:         agg.Total,
		AcceptPercent: accept,
		RejectPercent: reject,
		UserVote:      h.votes.CurrentClientChoice(),
		Loaded:        loaded,
	}
}

func (h *Handler) GetVotes(c *gin.Context) {
	agg, loaded := h.votes.Latest()
	c.JSON(http.StatusOK, h.votesView(agg, loaded))
}

func (h *Handler) GetComments(c *gin.Context) {
	feed, loaded := h.comments.Latest()
	if feed == nil {
		feed = []models.Comment{}
	}
	c.JSON(http.StatusOK, gin.H{"comments": feed, "loaded": loaded})
}

func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Session())
}

func (h *Handler) Vote(c *gin.Context) {
	var payload votePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vote payload"})
		return
	}
	h.respond(c, h.session.Vote(models.Choice(payload.Choice)))
}

// ProvideComment takes a form with message, name and an optional avatar file.
func (h *Handler) ProvideComment(c *gin.Context) {
	message := c.PostForm("message")
	name := c.PostForm("name")

	avatar, err := h.readAvatar(c)
	if err != nil {
		h.respond(c, err)
		return
	}
	h.respond(c, h.session.ProvideComment(message, name, avatar))
}

func (h *Handler) readAvatar(c *gin.Context) ([]byte, error) {
	header, err := c.FormFile("avatar")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidAvatar, err)
	}
	if h.avatarMaxBytes > 0 && header.Size > h.avatarMaxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", models.ErrInvalidAvatar, header.Size, h.avatarMaxBytes)
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidAvatar, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *Handler) SkipComment(c *gin.Context) {
	h.respond(c, h.session.SkipComment(c.Request.Context()))
}

func (h *Handler) ConfirmSubmit(c *gin.Context) {
	h.respond(c, h.session.ConfirmSubmit(c.Request.Context()))
}

// respond maps controller outcomes to HTTP. Already voted is not an error for the page: it just
// disables the control.
func (h *Handler) respond(c *gin.Context, err error) {
	session := h.session.Session()
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"session": session})
	case errors.Is(err, models.ErrAlreadyVoted):
		c.JSON(http.StatusOK, gin.H{"session": session, "disabled": true})
	case errors.Is(err, models.ErrInvalidChoice), errors.Is(err, models.ErrInvalidAvatar):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "session": session})
	case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, models.ErrSubmitInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "session": session})
	case errors.Is(err, models.ErrStoreWriteFailed), errors.Is(err, models.ErrAggregateUnknown):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to record vote, please retry", "retryable": true, "session": session})
	default:
		h.l.Error("unexpected session error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong", "session": session})
	}
}
