package usecase

import (
	"context"

	"StockSage/pkg/queue"
)

// LearnMessageType is the queue message type that triggers a learning pass.
const LearnMessageType = "advisor.learn"

// LearnTrigger is the payload enqueued when a watchlist entry settles.
type LearnTrigger struct {
	EntryID string `json:"entry_id"`
	Symbol  string `json:"symbol"`
}

// LearnJob consumes settle events and runs a learning pass. The pass
// batches every unconsumed labeled entry, so coalesced or redelivered
// triggers are harmless.
type LearnJob struct {
	advisor *Advisor
	limit   int
}

// NewLearnJob creates the queue job driving automatic learning.
func NewLearnJob(advisor *Advisor, limit int) *LearnJob {
	if limit <= 0 {
		limit = 100
	}
	return &LearnJob{advisor: advisor, limit: limit}
}

func (j *LearnJob) Name() string { return "learn" }

func (j *LearnJob) Type() string { return LearnMessageType }

func (j *LearnJob) Handle(ctx context.Context, payload interface{}) error {
	if _, err := queue.ParsePayload[LearnTrigger](payload); err != nil {
		return err
	}
	_, err := j.advisor.Learn(ctx, j.limit)
	return err
}

var _ queue.Job = (*LearnJob)(nil)
