package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/emrgen/docrepo/internal/service"
)

// ReindexTask is the reconciliation half of the dual indexing design: it
// periodically polls for documents whose index entry is missing or stale
// and resubmits them. The pass is idempotent, so overlapping with the
// synchronous best-effort indexing done on writes is harmless.
type ReindexTask struct {
	docs    *service.DocumentService
	cron    string
	timeout time.Duration
}

func NewReindexTask(interval string, docs *service.DocumentService) *ReindexTask {
	return &ReindexTask{
		docs:    docs,
		cron:    interval,
		timeout: 5 * time.Minute,
	}
}

func (r *ReindexTask) Schedule() string {
	return r.cron
}

func (r *ReindexTask) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	report, err := r.docs.ReindexPending(ctx)
	if err != nil {
		logrus.Errorf("reindex pass failed: %v", err)
		return
	}

	if report.Pending == 0 {
		return
	}

	logrus.Infof("reindex pass: %d pending, %d indexed, %d failed", report.Pending, report.Indexed, len(report.Errors))
	for id, err := range report.Errors {
		logrus.Errorf("reindex failed for document %s: %v", id, err)
	}
}
