// Package report renders the admin reports.  Every report follows the same
// rule: rows in backend order, an explicit empty state instead of an empty
// table, and no stale rows after a failure.
package report

import (
	"context"
	"errors"

	"github.com/iliyamo/matchday-seat-client/internal/api"
	"github.com/iliyamo/matchday-seat-client/internal/model"
	"github.com/iliyamo/matchday-seat-client/internal/session"
)

const (
	noticeNoStats   = "경기 통계가 없습니다."
	noticeNoAbuse   = "이상 예매 사용자가 없습니다."
	noticeNoCancels = "취소 이력이 없습니다."
)

var (
	ErrAdminRequired = errors.New("admin session required")
	ErrFilterMissing = errors.New("user_id and match_id are both required")
)

// AdminAPI is the part of the gateway client the reports call.
type AdminAPI interface {
	MatchStats(ctx context.Context) ([]model.MatchStats, error)
	AbuseCandidates(ctx context.Context) ([]model.AbuseCandidate, error)
	CancelHistory(ctx context.Context, f api.CancelHistoryFilter) ([]model.CancellationRecord, error)
}

// View is a rendered report.  Exactly one of Rows, Empty or Failed carries
// the result.
type View[T any] struct {
	Rows   []T    `json:"rows"`
	Empty  bool   `json:"empty"`
	Failed bool   `json:"failed"`
	Notice string `json:"notice,omitempty"`
}

// Filter narrows the cancellation history.
type Filter struct {
	UserID  uint64
	MatchID uint64
}

type Controller struct {
	sess session.Session
	api  AdminAPI
}

func NewController(sess session.Session, a AdminAPI) *Controller {
	return &Controller{sess: sess, api: a}
}

func (c *Controller) MatchStats(ctx context.Context) (View[model.MatchStats], error) {
	if !c.sess.Admin() {
		return View[model.MatchStats]{}, ErrAdminRequired
	}
	rows, err := c.api.MatchStats(ctx)
	return build(rows, err, noticeNoStats), nil
}

func (c *Controller) AbuseCandidates(ctx context.Context) (View[model.AbuseCandidate], error) {
	if !c.sess.Admin() {
		return View[model.AbuseCandidate]{}, ErrAdminRequired
	}
	rows, err := c.api.AbuseCandidates(ctx)
	return build(rows, err, noticeNoAbuse), nil
}

// CancelHistory lists the cancellation ledger, optionally narrowed by f.
func (c *Controller) CancelHistory(ctx context.Context, f Filter) (View[model.CancellationRecord], error) {
	if !c.sess.Admin() {
		return View[model.CancellationRecord]{}, ErrAdminRequired
	}
	rows, err := c.api.CancelHistory(ctx, api.CancelHistoryFilter{UserID: f.UserID, MatchID: f.MatchID})
	return build(rows, err, noticeNoCancels), nil
}

// UserCancelHistory is the per-user drill-down.  It needs both ids and makes
// no call without them.
func (c *Controller) UserCancelHistory(ctx context.Context, f Filter) (View[model.CancellationRecord], error) {
	if f.UserID == 0 || f.MatchID == 0 {
		return View[model.CancellationRecord]{}, ErrFilterMissing
	}
	return c.CancelHistory(ctx, f)
}

func build[T any](rows []T, err error, empty string) View[T] {
	switch {
	case err != nil:
		return View[T]{Rows: []T{}, Failed: true, Notice: api.Message(err)}
	case len(rows) == 0:
		return View[T]{Rows: []T{}, Empty: true, Notice: empty}
	}
	return View[T]{Rows: rows}
}
