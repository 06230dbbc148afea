package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"lendhub/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Reporter produces a booking report file for a period.
type Reporter interface {
	BuildReport(ctx context.Context, start, end time.Time) (string, error)
}

// ExportJob is one queued report request.
type ExportJob struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Attempt int       `json:"attempt"`
}

// ReportWorker consumes export jobs and writes report files. Jobs go through
// a redis list when a client is configured; otherwise an in-memory channel.
// Failed jobs are retried with backoff and land in a dead-letter list when
// retries are exhausted.
type ReportWorker struct {
	reporter      Reporter
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan ExportJob
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	logger        *zerolog.Logger
}

// NewReportWorker builds a worker with sane defaults.
func NewReportWorker(reporter Reporter, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *ReportWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &ReportWorker{
		reporter:      reporter,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan ExportJob, models.ExportQueueSize),
		redisQueueKey: "exports:queue",
		deadLetterKey: "exports:deadletter",
		pollInterval:  2 * time.Second,
		logger:        logger,
	}
}

// EnqueueExport schedules a report for the period via redis or the
// in-memory queue.
func (w *ReportWorker) EnqueueExport(ctx context.Context, start, end time.Time) error {
	if !end.After(start) {
		return errors.New("export period end must be after start")
	}
	return w.enqueue(ctx, ExportJob{Start: start, End: end})
}

func (w *ReportWorker) enqueue(ctx context.Context, job ExportJob) error {
	if w.redis != nil {
		if err := w.pushRedis(ctx, job); err != nil {
			w.logger.Warn().Err(err).Msg("report_worker: redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- job:
		return nil
	default:
		return errors.New("export queue is full")
	}
}

// Start launches the main loop; stops when ctx is done.
func (w *ReportWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("report_worker: started")
	defer w.logger.Info().Msg("report_worker: stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if job, ok := w.tryLocalQueue(); ok {
			w.processJob(ctx, job)
			continue
		}

		if job, ok := w.tryRedis(ctx); ok {
			w.processJob(ctx, job)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.pollInterval):
		}
	}
}

func (w *ReportWorker) tryLocalQueue() (ExportJob, bool) {
	select {
	case job := <-w.queue:
		return job, true
	default:
		return ExportJob{}, false
	}
}

func (w *ReportWorker) tryRedis(ctx context.Context) (ExportJob, bool) {
	if w.redis == nil {
		return ExportJob{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return ExportJob{}, false
		}
		w.logger.Error().Err(err).Msg("report_worker: redis BRPOP error")
		return ExportJob{}, false
	}
	if len(res) != 2 {
		return ExportJob{}, false
	}
	var job ExportJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		w.logger.Error().Err(err).Msg("report_worker: decode redis job")
		return ExportJob{}, false
	}
	return job, true
}

func (w *ReportWorker) processJob(ctx context.Context, job ExportJob) {
	path, err := w.reporter.BuildReport(ctx, job.Start, job.End)
	if err == nil {
		w.logger.Info().
			Str("path", path).
			Time("start", job.Start).
			Time("end", job.End).
			Msg("report_worker: report written")
		return
	}

	job.Attempt++
	if job.Attempt >= w.retryPolicy.MaxRetries {
		w.logger.Error().Err(err).Int("attempt", job.Attempt).Msg("report_worker: job failed permanently")
		w.pushDeadLetter(ctx, job)
		return
	}

	delay := w.retryPolicy.NextDelay(job.Attempt)
	w.logger.Warn().Err(err).Int("attempt", job.Attempt).Dur("retry_in", delay).Msg("report_worker: job failed, will retry")

	requeue := job
	time.AfterFunc(delay, func() {
		if err := w.enqueue(context.Background(), requeue); err != nil {
			w.logger.Error().Err(err).Msg("report_worker: requeue failed")
		}
	})
}

func (w *ReportWorker) pushRedis(ctx context.Context, job ExportJob) error {
	if w.redis == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *ReportWorker) pushDeadLetter(ctx context.Context, job ExportJob) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(job)
	if err != nil {
		w.logger.Error().Err(err).Msg("report_worker: encode deadletter job")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Msg("report_worker: deadletter push failed")
	}
}
