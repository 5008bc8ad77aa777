package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mathforge-ai/mathforge/pkg/agents"
	"github.com/mathforge-ai/mathforge/pkg/models"
)

// Pipeline stages, recorded on errored attempts so failures can be
// attributed to the role that produced them.
const (
	StageEngineer    = "engineer"
	StageInitial     = "initial_check"
	StageTarget      = "target_solve"
	StageEquivalence = "equivalence_check"
)

// discardSolved is the rejection reason when the target model answers
// correctly. A problem the target can solve is not adversarial.
const discardSolved = "Target model solved correctly"

// Outcome partitions finished attempts.
type Outcome int

const (
	Accepted Outcome = iota
	Discarded
	Errored
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Discarded:
		return "discarded"
	default:
		return "errored"
	}
}

// Attempt is one finished pass through the pipeline.
type Attempt struct {
	Seq     int
	Outcome Outcome
	Record  models.ProblemRecord
}

// Runner executes single attempts: engineer drafts, checker validates,
// target solves, checker judges equivalence. An attempt is accepted only
// when the target model fails the equivalence check.
type Runner struct {
	engineer   *agents.Engineer
	checker    *agents.Checker
	target     *agents.Target
	similarity *agents.Similarity
	tracer     trace.Tracer
}

func NewRunner(e *agents.Engineer, c *agents.Checker, t *agents.Target, s *agents.Similarity) *Runner {
	return &Runner{
		engineer:   e,
		checker:    c,
		target:     t,
		similarity: s,
		tracer:     otel.Tracer("mathforge/pipeline"),
	}
}

// Execute runs one attempt to completion. It never panics: unexpected
// panics in any stage fold into an errored attempt so a batch run always
// accounts for every launched attempt.
func (r *Runner) Execute(ctx context.Context, seq int, task Task) (att Attempt) {
	ctx, span := r.tracer.Start(ctx, "pipeline.attempt",
		trace.WithAttributes(
			attribute.Int("attempt.seq", seq),
			attribute.String("attempt.subject", task.Subject),
		))
	defer func() {
		if rec := recover(); rec != nil {
			att = errored(seq, task, "", fmt.Errorf("panic: %v", rec))
		}
		span.SetAttributes(attribute.String("attempt.outcome", att.Outcome.String()))
		span.End()
	}()

	problem, err := r.engineer.Generate(ctx, task.Subject, task.Topic, task.Seed)
	if err != nil {
		return errored(seq, task, StageEngineer, err)
	}

	check, err := r.checker.ValidateInitial(ctx, problem)
	if err != nil {
		return errored(seq, task, StageInitial, err)
	}
	if !check.Valid {
		return discarded(seq, problem, check.Reason)
	}
	mergeCorrectedHints(problem, check.CorrectedHints)

	answer, err := r.target.Solve(ctx, problem.Problem)
	if err != nil {
		return errored(seq, task, StageTarget, err)
	}
	problem.TargetAnswer = answer

	equiv, err := r.checker.CheckEquivalence(ctx, problem)
	if err != nil {
		return errored(seq, task, StageEquivalence, err)
	}
	if equiv.Valid {
		return discarded(seq, problem, discardSolved)
	}

	rec := recordFromProblem(seq, problem)
	if r.similarity.Enabled() {
		if score, err := r.similarity.Score(ctx, problem); err != nil {
			log.Printf("pipeline: similarity scoring failed for attempt %d: %v", seq, err)
		} else {
			rec.Similarity = &score
		}
	}
	return Attempt{Seq: seq, Outcome: Accepted, Record: rec}
}

// mergeCorrectedHints overlays the checker's corrections onto the draft
// hints. An absent or empty correction map keeps the originals; blank
// corrections for a key are ignored.
func mergeCorrectedHints(p *models.Problem, corrected map[string]string) {
	if len(corrected) == 0 {
		return
	}
	for key, hint := range corrected {
		if strings.TrimSpace(hint) == "" {
			continue
		}
		if p.Hints == nil {
			p.Hints = make(map[string]string)
		}
		p.Hints[key] = hint
		p.HintsWereCorrected = true
	}
}

func recordFromProblem(seq int, p *models.Problem) models.ProblemRecord {
	return models.ProblemRecord{
		Seq:          seq,
		Subject:      p.Subject,
		Topic:        p.Topic,
		Problem:      p.Problem,
		Answer:       p.Answer,
		Hints:        p.Hints,
		TargetAnswer: p.TargetAnswer,
	}
}

func discarded(seq int, p *models.Problem, reason string) Attempt {
	rec := recordFromProblem(seq, p)
	rec.RejectionReason = reason
	return Attempt{Seq: seq, Outcome: Discarded, Record: rec}
}

func errored(seq int, task Task, stage string, err error) Attempt {
	return Attempt{
		Seq:     seq,
		Outcome: Errored,
		Record: models.ProblemRecord{
			Seq:     seq,
			Subject: task.Subject,
			Topic:   task.Topic,
			Stage:   stage,
			Error:   err.Error(),
		},
	}
}
