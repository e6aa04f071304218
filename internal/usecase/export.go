package usecase

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/i18n-store/internal/domain"
	"github.com/totegamma/i18n-store/internal/infra/telemetry"
	"github.com/totegamma/i18n-store/internal/log"
)

type ExportUsecase struct {
	repo    ExportRepository
	metrics *telemetry.Metrics
	budget  time.Duration
}

// NewExportUsecase builds the export pipeline. budget is the latency target
// reported against; it is not enforced.
func NewExportUsecase(repo ExportRepository, metrics *telemetry.Metrics, budget time.Duration) *ExportUsecase {
	return &ExportUsecase{
		repo:    repo,
		metrics: metrics,
		budget:  budget,
	}
}

// Export aggregates every translation into locale -> group -> key -> value.
// Rows are applied in scan order, so later duplicates win.
func (uc *ExportUsecase) Export(ctx context.Context) (domain.ExportTree, int, error) {
	ctx, span := tracer.Start(ctx, "Export.Usecase.Export")
	defer span.End()

	tree := domain.ExportTree{}
	rows := 0
	err := uc.repo.Scan(ctx, func(row domain.ExportRow) error {
		tree.Put(row)
		rows++
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int("rows", rows), attribute.Int("locales", len(tree)))
	return tree, rows, nil
}

// Render runs the export and serializes it with sorted keys.
func (uc *ExportUsecase) Render(ctx context.Context) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Export.Usecase.Render")
	defer span.End()

	start := time.Now()

	tree, rows, err := uc.Export(ctx)
	if err != nil {
		return nil, err
	}

	body, err := tree.MarshalJSON()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	elapsed := time.Since(start)
	uc.metrics.ObserveExport(elapsed, rows, uc.budget)

	attrs := []slog.Attr{
		slog.Int("rows", rows),
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", elapsed),
	}
	if elapsed > uc.budget {
		log.Warn(ctx, "export exceeded latency budget", append(attrs, slog.Duration("budget", uc.budget))...)
	} else {
		log.Debug(ctx, "export rendered", attrs...)
	}

	return body, nil
}
