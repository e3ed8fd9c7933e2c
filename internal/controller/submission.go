package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/saxenaaman628/redis-farewell-vote/internal/models"
	"github.com/saxenaaman628/redis-farewell-vote/internal/store"
	"github.com/saxenaaman628/redis-farewell-vote/internal/utils"
)

// VoteView is what the controller needs from the vote synchronizer.
type VoteView interface {
	Latest() (models.VoteAggregate, bool)
	CurrentClientChoice() models.Choice
	RecordChoice(ctx context.Context, c models.Choice) error
}

type Options struct {
	AggregatePath  string
	CommentsPath   string
	AvatarMaxBytes int
	Now            func() time.Time
}

// Session is a read-only copy of the controller state for presentation.
type Session struct {
	State       State               `json:"state"`
	Choice      models.Choice       `json:"choice,omitempty"`
	Draft       models.CommentDraft `json:"draft"`
	LastError   string              `json:"lastError,omitempty"`
	Retryable   bool                `json:"retryable"`
	CommentLost bool                `json:"commentLost"`
}

// Controller drives one voting session: pick a side, optionally write a comment, submit once.
//
// Submission is a read-modify-write of the aggregate: the new totals come from the last snapshot this
// client saw, then overwrite the shared record. Two clients submitting from the same snapshot both
// write N+1 and one vote is lost. The controller is not reentrant; a call made while a submission is
// in flight gets ErrSubmitInProgress.
type Controller struct {
	votes  VoteView
	remote store.RemoteStore
	opts   Options
	l      *zap.Logger

	mu          sync.Mutex
	state       State
	choice      models.Choice
	draft       models.CommentDraft
	lastErr     error
	commentLost bool
}

func New(votes VoteView, remote store.RemoteStore, opts Options, l *zap.Logger) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Controller{
		votes:  votes,
		remote: remote,
		opts:   opts,
		l:      l,
		state:  StateIdle,
	}
	if prev := votes.CurrentClientChoice(); prev != models.ChoiceNone {
		c.state = StateDone
		c.choice = prev
	}
	return c
}

func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Session{
		State:       c.state,
		Choice:      c.choice,
		Draft:       c.draft,
		CommentLost: c.commentLost,
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
		s.Retryable = errors.Is(c.lastErr, models.ErrStoreWriteFailed) || errors.Is(c.lastErr, models.ErrAggregateUnknown)
	}
	return s
}

// Vote selects a side. Picking again before submitting changes the side and keeps any draft.
func (c *Controller) Vote(choice models.Choice) error {
	if !choice.Valid() {
		return models.ErrInvalidChoice
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guardLocked(StateIdle, StateSelecting); err != nil {
		return err
	}
	c.state = StateSelecting
	c.choice = choice
	c.lastErr = nil
	c.l.Debug("choice selected", zap.String("choice", string(choice)))
	return nil
}

// ProvideComment stores the comment draft, replacing any earlier one. The avatar is inlined right away
// and dropped when name is blank.
func (c *Controller) ProvideComment(text, name string, avatar []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guardLocked(StateSelecting, StateComposing); err != nil {
		return err
	}

	if strings.TrimSpace(name) == "" {
		avatar = nil
	}
	avatarURI, err := utils.AvatarDataURI(avatar, c.opts.AvatarMaxBytes)
	if err != nil {
		return err
	}
	c.draft = models.CommentDraft{Text: text, Name: name, Avatar: avatarURI}
	c.state = StateComposing
	return nil
}

// SkipComment submits the vote without a comment.
func (c *Controller) SkipComment(ctx context.Context) error {
	c.mu.Lock()
	if err := c.guardLocked(StateSelecting, StateComposing); err != nil {
		c.mu.Unlock()
		return err
	}
	choice := c.choice
	c.state = StateSubmitting
	c.mu.Unlock()

	return c.finish(ctx, choice, nil)
}

// ConfirmSubmit submits the vote with the current draft. From Selecting it retries a failed
// submission with the draft that was kept.
func (c *Controller) ConfirmSubmit(ctx context.Context) error {
	c.mu.Lock()
	if err := c.guardLocked(StateComposing, StateSelecting); err != nil {
		c.mu.Unlock()
		return err
	}
	choice, draft := c.choice, c.draft
	c.state = StateSubmitting
	c.mu.Unlock()

	comment, err := draft.Comment(choice, c.opts.Now())
	if err != nil {
		if !errors.Is(err, models.ErrEmptyCommentIgnored) {
			c.rollback(err)
			return err
		}
		c.l.Debug("blank comment, submitting vote only")
		return c.finish(ctx, choice, nil)
	}
	return c.finish(ctx, choice, &comment)
}

func (c *Controller) guardLocked(allowed ...State) error {
	if c.state == StateDone || c.votes.CurrentClientChoice() != models.ChoiceNone {
		return models.ErrAlreadyVoted
	}
	if c.state == StateSubmitting {
		return models.ErrSubmitInProgress
	}
	for _, s := range allowed {
		if c.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", models.ErrInvalidTransition, c.state)
}

func (c *Controller) finish(ctx context.Context, choice models.Choice, comment *models.Comment) error {
	commentLost, err := c.commit(ctx, choice, comment)
	if err != nil {
		c.rollback(err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateDone
	c.draft = models.CommentDraft{}
	c.lastErr = nil
	c.commentLost = commentLost
	return nil
}

// rollback returns to Selecting. Choice and draft stay as they were so the user can retry.
func (c *Controller) rollback(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateSelecting
	c.lastErr = err
}

func (c *Controller) commit(ctx context.Context, choice models.Choice, comment *models.Comment) (bool, error) {
	agg, ok := c.votes.Latest()
	if !ok {
		c.l.Warn("refusing to submit before totals are known")
		return false, models.ErrAggregateUnknown
	}

	next := agg.With(choice)
	if err := c.remote.Write(ctx, c.opts.AggregatePath, next.Fields()); err != nil {
		c.l.Error("failed to write aggregate",
			zap.String("choice", string(choice)),
			zap.Any("aggregate", next),
			zap.Error(err))
		return false, fmt.Errorf("controller: %w: %w", models.ErrStoreWriteFailed, err)
	}
	c.l.Info("vote recorded", zap.String("choice", string(choice)), zap.Any("aggregate", next))

	// The vote counts from here on. The comment and the local marker must not be dropped because the
	// caller went away.
	ctx = context.WithoutCancel(ctx)

	commentLost := false
	if comment != nil {
		id, err := c.remote.AppendUnique(ctx, c.opts.CommentsPath, comment.Fields())
		if err != nil {
			// The vote already counts; the comment is not retried.
			c.l.Warn("failed to append comment, vote kept", zap.Error(err))
			commentLost = true
		} else {
			c.l.Info("comment appended", zap.String("id", id), zap.Bool("anonymous", comment.Anonymous()))
		}
	}

	if err := c.votes.RecordChoice(ctx, choice); err != nil {
		c.l.Error("failed to persist local vote", zap.Error(err))
	}
	return commentLost, nil
}
