package workflow

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"ipad-assistant-be/pkg/rag/category"
	"ipad-assistant-be/pkg/rag/extract"
	"ipad-assistant-be/pkg/rag/response"
	"ipad-assistant-be/pkg/search"
	"ipad-assistant-be/pkg/utils"
)

type Classifier interface {
	Classify(ctx context.Context, query string, history string) (category.Category, error)
}

type Searcher interface {
	Search(ctx context.Context, query string, limit int) search.Result
}

type Generator interface {
	Generate(ctx context.Context, req response.Request) (string, error)
}

var tracer = otel.Tracer("ipad-assistant-be/pkg/rag/workflow")

// Orchestrator runs Classify -> Search -> Extract -> Generate. Upstream
// failures inside a stage degrade to that component's fallback and the run
// continues. Cancellation, an empty query or a panic inside a stage route to
// the error state from any stage.
type Orchestrator struct {
	classifier  Classifier
	searcher    Searcher
	generator   Generator
	resultLimit int
	logger      *log.Logger
	now         func() time.Time
}

func NewOrchestrator(classifier Classifier, searcher Searcher, generator Generator, resultLimit int, logger *log.Logger) *Orchestrator {
	if resultLimit <= 0 {
		resultLimit = 10
	}
	return &Orchestrator{
		classifier:  classifier,
		searcher:    searcher,
		generator:   generator,
		resultLimit: resultLimit,
		logger:      logger,
		now:         time.Now,
	}
}

// Run executes the pipeline and never fails.
func (o *Orchestrator) Run(ctx context.Context, in Input) Result {
	return o.Execute(ctx, in).result()
}

// Execute runs the pipeline and returns the final state, including the
// intermediate fields Run does not expose.
func (o *Orchestrator) Execute(ctx context.Context, in Input) *State {
	ctx, span := tracer.Start(ctx, "workflow.run")
	defer span.End()

	started := o.now()
	state := newState(in)

	o.logger.Printf("[PIPELINE] Starting execution for query: %s", utils.Truncate(in.Query, 50))

	stage := StageClassify
	for stage != StageDone && stage != StageError {
		outcome := o.runStage(ctx, stage, state)
		state.Visited = append(state.Visited, stage)
		if outcome.Failed() {
			state.Error = outcome.Reason()
			o.logger.Printf("[ERROR] Stage %s failed: %s", stage, state.Error)
		}
		stage = transition(stage, outcome)
	}

	if stage == StageError {
		o.handleError(state)
		state.Visited = append(state.Visited, StageError)
		span.SetStatus(codes.Error, state.Error)
	}

	stages := make([]string, len(state.Visited))
	for i, s := range state.Visited {
		stages[i] = s.String()
	}
	state.Metadata["stages"] = stages
	state.Metadata["degraded_stages"] = append([]string{}, state.Degraded...)
	state.Metadata["duration_ms"] = o.now().Sub(started).Milliseconds()

	span.SetAttributes(
		attribute.String("workflow.category", string(state.Category)),
		attribute.Int("workflow.sources", len(state.Sources)),
		attribute.StringSlice("workflow.degraded", state.Degraded),
	)
	o.logger.Printf("[PIPELINE] Finished (Category: %s, Stages: %v, Degraded: %v)", state.Category, stages, state.Degraded)
	return state
}

// runStage guards one stage with a span, a cancellation check and panic
// recovery.
func (o *Orchestrator) runStage(ctx context.Context, stage Stage, state *State) (outcome Outcome) {
	ctx, span := tracer.Start(ctx, "workflow."+stage.String())
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Printf("[ERROR] Recovered panic in stage %s: %v", stage, r)
			outcome = Fail(fmt.Sprintf("%s: internal failure", stageErrorLabel(stage)))
		}
		if outcome.Failed() {
			span.SetStatus(codes.Error, outcome.Reason())
		}
	}()

	if err := ctx.Err(); err != nil {
		return Fail(fmt.Sprintf("%s: %v", stageErrorLabel(stage), err))
	}

	switch stage {
	case StageClassify:
		outcome = o.classify(ctx, state)
	case StageSearch:
		outcome = o.search(ctx, state)
	case StageExtract:
		outcome = o.extract(state)
	case StageGenerate:
		outcome = o.generate(ctx, state)
	default:
		outcome = Fail(fmt.Sprintf("unknown stage %s", stage))
	}

	if !outcome.Failed() {
		if err := ctx.Err(); err != nil {
			outcome = Fail(fmt.Sprintf("%s: %v", stageErrorLabel(stage), err))
		}
	}
	return outcome
}

func (o *Orchestrator) classify(ctx context.Context, state *State) Outcome {
	if strings.TrimSpace(state.Query) == "" {
		return Fail("Classification error: empty query")
	}

	cat, err := o.classifier.Classify(ctx, state.Query, state.History)
	if err != nil {
		if ctx.Err() != nil {
			return Fail(fmt.Sprintf("Classification error: %v", ctx.Err()))
		}
		state.degrade(StageClassify)
	}
	if !cat.Valid() {
		cat = category.General
	}

	state.Category = cat
	state.Metadata["classification_time"] = o.now().Format(time.RFC3339)
	o.logger.Printf("[CLASSIFY] Query classified as: %s", cat)
	return Continue()
}

func (o *Orchestrator) search(ctx context.Context, state *State) Outcome {
	state.Queries = search.QueryVariants(state.Query, state.Category)

	var hits []search.Hit
	for _, q := range state.Queries {
		res := o.searcher.Search(ctx, q, o.resultLimit)
		hits = append(hits, res.Hits...)
		state.Providers = append(state.Providers, res.Provider)
		if res.Provider == search.SourceCanned {
			state.degrade(StageSearch)
		}
	}

	state.Hits = hits
	state.Metadata["search_queries"] = state.Queries
	state.Metadata["search_providers"] = state.Providers
	state.Metadata["result_count"] = len(hits)
	o.logger.Printf("[SEARCH] Found %d search results across %d queries", len(hits), len(state.Queries))
	return Continue()
}

func (o *Orchestrator) extract(state *State) Outcome {
	state.Facts = extract.Extract(state.Hits, state.Query, state.Category)

	state.Sources = make([]string, 0, maxSources)
	for _, h := range state.Hits {
		if len(state.Sources) == maxSources {
			break
		}
		if link, ok := response.WebURL(h.URL); ok {
			state.Sources = append(state.Sources, link)
		}
	}
	return Continue()
}

func (o *Orchestrator) generate(ctx context.Context, state *State) Outcome {
	reply, err := o.generator.Generate(ctx, response.Request{
		Query:    state.Query,
		Category: state.Category,
		Facts:    state.Facts,
		Sources:  state.Sources,
		Context:  state.History,
	})
	if err != nil {
		if ctx.Err() != nil {
			return Fail(fmt.Sprintf("Response generation error: %v", ctx.Err()))
		}
		state.degrade(StageGenerate)
	}

	state.Response = reply
	return Continue()
}

func (o *Orchestrator) handleError(state *State) {
	reason := state.Error
	if reason == "" {
		reason = "Unknown error occurred"
	}
	state.Response = fmt.Sprintf("I apologize, but I encountered an issue: %s. Please try rephrasing your question about iPads.", reason)
	state.Category = category.Error
	state.Sources = nil
	state.Metadata["error"] = reason
}

func stageErrorLabel(stage Stage) string {
	switch stage {
	case StageClassify:
		return "Classification error"
	case StageSearch:
		return "Search error"
	case StageExtract:
		return "Processing error"
	case StageGenerate:
		return "Response generation error"
	}
	return "Workflow error"
}
