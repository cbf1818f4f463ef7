package jobs

import (
	"context"
	"log/slog"

	"github.com/ElRublo/gestion-envios/internal/entities"

	"github.com/robfig/cron/v3"
)

type ClosureReporter interface {
	DailyClosureReport(ctx context.Context) (entities.ClosureReport, error)
}

// ClosureReportJob logs the daily closure summary every night. The report
// itself stays recomputed on demand, the job only observes it.
type ClosureReportJob struct {
	reporter ClosureReporter
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewClosureReportJob(reporter ClosureReporter, logger *slog.Logger) *ClosureReportJob {
	return &ClosureReportJob{
		reporter: reporter,
		cron:     cron.New(),
		logger:   logger.With(slog.String("component", "closure_report_job")),
	}
}

func (j *ClosureReportJob) Start() error {
	_, err := j.cron.AddFunc("59 23 * * *", func() {
		ctx := context.Background()

		report, err := j.reporter.DailyClosureReport(ctx)
		if err != nil {
			j.logger.ErrorContext(ctx, "closure report job failed", slog.Any("error", err))
			return
		}

		j.logger.InfoContext(ctx, "daily closure report",
			slog.String("date", report.Date.Format("2006-01-02")),
			slog.Int("deliveries", report.Total),
		)
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("closure report job started")
	return nil
}

func (j *ClosureReportJob) Stop() {
	j.cron.Stop()
	j.logger.Info("closure report job stopped")
}
