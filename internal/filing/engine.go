package filing

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/hunchagency/dotfile/internal/classify"
	"github.com/hunchagency/dotfile/internal/ledger"
	"github.com/hunchagency/dotfile/internal/metrics"
	"github.com/hunchagency/dotfile/internal/records"
)

// routeCategories maps upstream workflow routes to categories. The
// outgoing route is handled separately.
var routeCategories = map[string]classify.Category{
	"triage":   classify.CategoryBriefs,
	"new-job":  classify.CategoryBriefs,
	"feedback": classify.CategoryFeedback,
	"file":     classify.CategoryOther,
	"update":   classify.CategoryOther,
}

// routeOutgoing routes straight to a new delivery round.
const routeOutgoing = "work-to-client"

// folderTypeCategories maps explicit folder type instructions to
// categories. Folder types arrive lowercased from the upstream
// assistant.
var folderTypeCategories = map[string]classify.Category{
	"briefs":   classify.CategoryBriefs,
	"feedback": classify.CategoryFeedback,
	"other":    classify.CategoryOther,
}

const folderTypeRound = "round"

// EngineConfig carries the engine's collaborators.
type EngineConfig struct {
	Resolver   *Resolver
	Classifier Classifier // satisfied by *classify.Classifier
	Rounds     *RoundAllocator
	Mover      Mover
	Store      ProjectStore // satisfied by *records.Client
	Ledger     Ledger       // optional: nil disables filing history
	Logger     *slog.Logger
}

// Engine walks one filing request through the pipeline. Safe for
// concurrent use; requests share nothing but the collaborators.
type Engine struct {
	resolver   *Resolver
	classifier Classifier
	rounds     *RoundAllocator
	mover      Mover
	store      ProjectStore
	ledger     Ledger
	logger     *slog.Logger
}

// NewEngine builds an engine from cfg.
func NewEngine(cfg *EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		resolver:   cfg.Resolver,
		classifier: cfg.Classifier,
		rounds:     cfg.Rounds,
		mover:      cfg.Mover,
		store:      cfg.Store,
		ledger:     cfg.Ledger,
		logger:     logger,
	}
}

// File runs one request through resolve, classify, round allocation,
// materialize, move and report. The first fatal stage failure
// short-circuits; per-file move problems degrade to a partial result
// instead.
func (e *Engine) File(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()

	logger := e.logger.With(
		slog.String("request_id", req.RequestID),
		slog.String("job", req.JobNumber),
	)

	logger.Info("filing request received",
		slog.String("sender", req.SenderEmail),
		slog.String("subject", req.Subject),
		slog.Int("attachments", len(req.Attachments)),
	)

	folder, err := e.resolver.Resolve(ctx, req.JobNumber, req.ClientCode)
	if err != nil {
		return nil, e.fail(ctx, logger, req, started, err)
	}

	// A record reference supplied by the caller wins over the one the
	// resolver found.
	if req.RecordID != "" {
		folder.RecordID = req.RecordID
	}

	logger.Info("job folder resolved",
		slog.String("folder", folder.Name),
		slog.String("path", folder.Path),
	)

	verdict, source := e.verdict(ctx, req)
	metrics.ClassificationsTotal.WithLabelValues(string(verdict.Category), string(source)).Inc()

	logger.Info("intent classified",
		slog.String("category", string(verdict.Category)),
		slog.Bool("outgoing", verdict.Outgoing),
		slog.String("source", string(source)),
	)

	var (
		round      int
		folderName string
	)

	if verdict.Outgoing {
		round, err = e.rounds.Next(ctx, folder)
		if err != nil {
			return nil, e.fail(ctx, logger, req, started, err)
		}

		folderName = RoundFolderName(round)
		metrics.RoundsAllocatedTotal.Inc()

		logger.Info("round allocated", slog.Int("round", round))
	} else {
		folderName = CategoryFolderName(verdict.Category)
	}

	moved, err := e.mover.Move(ctx, MoveRequest{
		Folder:     folder,
		FolderName: folderName,
		Files:      req.Attachments,
		Message:    BuildMessage(req),
	})
	if err != nil {
		return nil, e.fail(ctx, logger, req, started, err)
	}

	for _, f := range moved.Files {
		metrics.FilesMovedTotal.WithLabelValues(string(f.Outcome)).Inc()
	}

	result := &Result{
		RequestID:   req.RequestID,
		JobNumber:   req.JobNumber,
		Category:    string(verdict.Category),
		Outgoing:    verdict.Outgoing,
		Confidence:  string(verdict.Confidence),
		Source:      string(source),
		Round:       round,
		Destination: moved.Destination,
		Files:       moved.Files,
		MessageFile: moved.MessageFile,
		Partial:     partial(moved.Files),
	}

	e.report(ctx, logger, folder, result)

	outcome := ledger.OutcomeFiled
	if result.Partial {
		outcome = ledger.OutcomePartial
	}

	metrics.FilingsTotal.WithLabelValues(outcome).Inc()
	metrics.FilingDuration.Observe(time.Since(started).Seconds())

	logger.Info("filing complete",
		slog.String("destination", result.Destination.Name),
		slog.Bool("partial", result.Partial),
		slog.Duration("elapsed", time.Since(started)),
	)

	return result, nil
}

// verdict picks the destination: an explicit folder type wins, then a
// recognized route, then classification. Explicit instructions bypass
// the oracle entirely.
func (e *Engine) verdict(ctx context.Context, req Request) (*classify.Verdict, classify.Source) {
	if req.FolderType != "" {
		ft := strings.ToLower(req.FolderType)
		if ft == folderTypeRound {
			return overrideVerdict(classify.CategoryOther, true, "folder type "+ft), classify.SourceOverride
		}

		category, ok := folderTypeCategories[ft]
		if !ok {
			category = classify.CategoryOther
		}

		return overrideVerdict(category, false, "folder type "+ft), classify.SourceOverride
	}

	if req.Route != "" {
		if req.Route == routeOutgoing {
			return overrideVerdict(classify.CategoryOther, true, "route "+req.Route), classify.SourceOverride
		}

		if category, ok := routeCategories[req.Route]; ok {
			return overrideVerdict(category, false, "route "+req.Route), classify.SourceOverride
		}

		// Unrecognized routes carry no instruction; classify as usual.
		e.logger.Debug("unrecognized route, classifying",
			slog.String("route", req.Route),
		)
	}

	return e.classifier.Classify(ctx, toEmail(req))
}

// report writes the outcome back to the record store and the local
// ledger. Reporting is best-effort: the files have already moved, so
// failures here are logged and swallowed.
func (e *Engine) report(ctx context.Context, logger *slog.Logger, folder *ProjectFolder, result *Result) {
	if folder.RecordID != "" {
		update := records.FilingUpdate{
			FolderURL: result.Destination.WebURL,
		}
		if result.Outgoing {
			update.Round = result.Round
		}

		if err := e.store.UpdateFiling(ctx, folder.RecordID, update); err != nil {
			logger.Warn("project record update failed",
				slog.String("record_id", folder.RecordID),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := e.store.LogActivity(ctx, result.JobNumber, result.Destination.Name, landedFiles(result), true); err != nil {
		logger.Warn("activity log failed", slog.String("error", err.Error()))
	}

	e.record(ctx, logger, ledgerEntry(result))
}

// fail finalizes a request that died mid-pipeline: log it, count it,
// leave a ledger trace, and hand the stage-tagged error back to the
// caller.
func (e *Engine) fail(ctx context.Context, logger *slog.Logger, req Request, started time.Time, err error) error {
	stage := StageResolve
	var ferr *Error
	if errors.As(err, &ferr) {
		stage = ferr.Stage
	}

	logger.Error("filing failed",
		slog.String("stage", string(stage)),
		slog.String("error", err.Error()),
		slog.Duration("elapsed", time.Since(started)),
	)

	metrics.StageFailuresTotal.WithLabelValues(string(stage)).Inc()
	metrics.FilingsTotal.WithLabelValues(ledger.OutcomeFailed).Inc()
	metrics.FilingDuration.Observe(time.Since(started).Seconds())

	e.record(ctx, logger, ledger.Entry{
		RequestID: req.RequestID,
		JobNumber: req.JobNumber,
		Outcome:   ledger.OutcomeFailed,
		Error:     err.Error(),
	})

	return err
}

// record writes a ledger entry when history is enabled.
func (e *Engine) record(ctx context.Context, logger *slog.Logger, entry ledger.Entry) {
	if e.ledger == nil {
		return
	}

	if err := e.ledger.Record(ctx, entry); err != nil {
		logger.Warn("ledger write failed", slog.String("error", err.Error()))
	}
}

// landedFiles lists the names that arrived at the destination,
// including a retained-copy source and the message artifact.
func landedFiles(result *Result) []string {
	var names []string
	for _, f := range result.Files {
		if f.Outcome == OutcomeMoved || f.Outcome == OutcomeCopyRetained {
			names = append(names, f.Name)
		}
	}

	if result.MessageFile != "" {
		names = append(names, result.MessageFile)
	}

	return names
}

func ledgerEntry(result *Result) ledger.Entry {
	files := make([]ledger.File, 0, len(result.Files))
	for _, f := range result.Files {
		files = append(files, ledger.File{
			Name:    f.Name,
			Outcome: string(f.Outcome),
			Detail:  f.Detail,
		})
	}

	outcome := ledger.OutcomeFiled
	if result.Partial {
		outcome = ledger.OutcomePartial
	}

	return ledger.Entry{
		RequestID:   result.RequestID,
		JobNumber:   result.JobNumber,
		Category:    result.Category,
		Outgoing:    result.Outgoing,
		Round:       result.Round,
		Destination: result.Destination.Name,
		Path:        result.Destination.Path,
		WebURL:      result.Destination.WebURL,
		Files:       files,
		Outcome:     outcome,
	}
}

func toEmail(req Request) classify.Email {
	return classify.Email{
		SenderName:      req.SenderName,
		SenderEmail:     req.SenderEmail,
		Recipients:      req.Recipients,
		Subject:         req.Subject,
		Body:            req.Body,
		AttachmentNames: req.Attachments,
	}
}
