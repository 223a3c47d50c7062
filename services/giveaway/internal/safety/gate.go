package safety

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ucycle/pkg/logger"
	"ucycle/services/giveaway/internal/entity"
)

// Gate screens images before they are stored. It fails open: a classifier
// that errors or runs past the timeout lets the image through.
type Gate struct {
	classifier Classifier
	timeout    time.Duration
	logger     *logger.Logger
}

func NewGate(classifier Classifier, timeout time.Duration, log *logger.Logger) *Gate {
	return &Gate{classifier: classifier, timeout: timeout, logger: log}
}

func (g *Gate) Check(ctx context.Context, image string) Verdict {
	checkCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		checkCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	verdict, err := g.classify(checkCtx, image)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("classifier timed out after %s: %w", g.timeout, err)
		}
		g.logger.Warn("[SAFETY] %v: %v; allowing image", entity.ErrUpstreamUnavailable, err)
		return Verdict{Safe: true}
	}
	return verdict
}

// classify runs the classifier but returns as soon as ctx is done, even if
// the classifier ignores cancellation.
func (g *Gate) classify(ctx context.Context, image string) (Verdict, error) {
	type result struct {
		verdict Verdict
		err     error
	}
	done := make(chan result, 1)
	go func() {
		v, err := g.classifier.Classify(ctx, image)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.verdict, r.err
	case <-ctx.Done():
		return Verdict{}, ctx.Err()
	}
}

// CheckAll screens images in submission order and stops at the first unsafe
// one, reporting its 1-based position.
func (g *Gate) CheckAll(ctx context.Context, images []string) error {
	for i, image := range images {
		verdict := g.Check(ctx, image)
		if !verdict.Safe {
			g.logger.Info("[SAFETY] Rejected image %d: %s", i+1, verdict.Reason)
			return &entity.ContentRejectedError{Position: i + 1, Reason: verdict.Reason}
		}
	}
	return nil
}
