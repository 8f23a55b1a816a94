package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/resonance/internal/constants"
	"github.com/nvandessel/resonance/internal/models"
	"github.com/nvandessel/resonance/internal/ratelimit"
	"github.com/nvandessel/resonance/internal/store"
)

// Tool names.
const (
	ToolRun     = "resonance_run"
	ToolCompare = "resonance_compare"
	ToolDeficit = "resonance_deficit"
	ToolHistory = "resonance_history"
)

// HistoryResourceURI lists recent saved results as markdown.
const HistoryResourceURI = "resonance://history/recent"

// ErrTooManyCycles is returned when a client requests more cycles than a
// single tool call may run.
var ErrTooManyCycles = errors.New("cycle count exceeds tool limit")

// ErrInvalidHistoryQuery is returned for an unknown kind or a negative limit.
var ErrInvalidHistoryQuery = errors.New("invalid history query")

// registerTools registers all resonance MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ToolRun,
		Description: "Evolve a four-axis state through the resonance dynamics and report harmony, dominance, and the deficit axis",
	}, s.handleRun)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ToolCompare,
		Description: "Run two states to their attractors and grade how closely they converged",
	}, s.handleCompare)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ToolDeficit,
		Description: "Run a long simulation and recommend which axis to strengthen",
	}, s.handleDeficit)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ToolHistory,
		Description: "List saved run, comparison, and deficit results, newest first",
	}, s.handleHistory)
}

// registerResources registers MCP resources for auto-loading into context.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         HistoryResourceURI,
		Name:        "resonance-recent-history",
		Description: "The most recent saved resonance results.",
		MIMEType:    "text/markdown",
	}, s.handleHistoryResource)
}

// resolveCycles maps an omitted (zero) cycle count to def and enforces the
// per-call ceiling. Negative counts pass through for the engine to reject.
func resolveCycles(requested, def int) (int, error) {
	if requested == 0 {
		requested = def
	}
	if requested > constants.MaxToolCycles {
		return 0, fmt.Errorf("%d cycles requested, max %d: %w", requested, constants.MaxToolCycles, ErrTooManyCycles)
	}
	return requested, nil
}

// handleRun implements the resonance_run tool.
func (s *Server) handleRun(ctx context.Context, req *sdk.CallToolRequest, args RunInput) (_ *sdk.CallToolResult, _ RunOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ToolRun, start, retErr, sanitizeToolParams(map[string]any{
			"state": args.State, "cycles": args.Cycles, "bounds": args.Bounds,
			"interval": args.Interval, "max_samples": args.MaxSamples,
			"trajectory": args.Trajectory, "save": args.Save,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ToolRun); err != nil {
		return nil, RunOutput{}, err
	}

	cycles, err := resolveCycles(args.Cycles, s.settings.Engine.DefaultCycles)
	if err != nil {
		return nil, RunOutput{}, err
	}

	opts := s.settings.RunOptions()
	opts.Bounds = args.Bounds
	opts.MaxSamples = args.MaxSamples
	if args.Interval != 0 {
		opts.RecordInterval = args.Interval
	}

	result, err := s.engine.RunCycles(ctx, args.State, cycles, opts)
	if err != nil {
		return nil, RunOutput{}, fmt.Errorf("running cycles: %w", err)
	}

	out := RunOutput{
		Result:  summarizeResult(result, args.Trajectory),
		Message: fmt.Sprintf("Ran %d cycles: harmony %.4f -> %.4f, deficit %s", cycles, result.InitialHarmony, result.FinalHarmony, result.Deficit),
	}

	if args.Save {
		rec, err := store.NewRunRecord(result)
		if err != nil {
			return nil, RunOutput{}, fmt.Errorf("building record: %w", err)
		}
		if out.RecordID, err = s.store.Save(ctx, rec); err != nil {
			return nil, RunOutput{}, fmt.Errorf("saving result: %w", err)
		}
	}

	s.logger.Debug("run complete", "cycles", cycles, "final_harmony", result.FinalHarmony, "deficit", result.Deficit.String())
	return nil, out, nil
}

// handleCompare implements the resonance_compare tool.
func (s *Server) handleCompare(ctx context.Context, req *sdk.CallToolRequest, args CompareInput) (_ *sdk.CallToolResult, _ CompareOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ToolCompare, start, retErr, sanitizeToolParams(map[string]any{
			"a": args.A, "b": args.B, "cycles": args.Cycles, "save": args.Save,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ToolCompare); err != nil {
		return nil, CompareOutput{}, err
	}

	cycles, err := resolveCycles(args.Cycles, s.settings.Engine.DefaultCycles)
	if err != nil {
		return nil, CompareOutput{}, err
	}

	cmp, err := s.comparator.AnalyzePair(ctx, args.A, args.B, cycles)
	if err != nil {
		return nil, CompareOutput{}, fmt.Errorf("comparing states: %w", err)
	}

	out := CompareOutput{
		A:                   summarizeResult(cmp.A, false),
		B:                   summarizeResult(cmp.B, false),
		ConvergenceDistance: cmp.ConvergenceDistance,
		SameDeficit:         cmp.SameDeficit,
		HarmonyDifference:   cmp.HarmonyDifference,
		Quality:             string(cmp.Quality),
		Message:             fmt.Sprintf("%s convergence: final states %.4f apart after %d cycles", cmp.Quality, cmp.ConvergenceDistance, cycles),
	}

	if args.Save {
		rec, err := store.NewComparisonRecord(cmp)
		if err != nil {
			return nil, CompareOutput{}, fmt.Errorf("building record: %w", err)
		}
		if out.RecordID, err = s.store.Save(ctx, rec); err != nil {
			return nil, CompareOutput{}, fmt.Errorf("saving comparison: %w", err)
		}
	}

	return nil, out, nil
}

// handleDeficit implements the resonance_deficit tool.
func (s *Server) handleDeficit(ctx context.Context, req *sdk.CallToolRequest, args DeficitInput) (_ *sdk.CallToolResult, _ DeficitOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ToolDeficit, start, retErr, sanitizeToolParams(map[string]any{
			"state": args.State, "cycles": args.Cycles, "save": args.Save,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ToolDeficit); err != nil {
		return nil, DeficitOutput{}, err
	}

	cycles, err := resolveCycles(args.Cycles, s.settings.Analysis.DeficitCycles)
	if err != nil {
		return nil, DeficitOutput{}, err
	}

	analysis, err := s.analyzer.DetectDeficit(ctx, args.State, cycles)
	if err != nil {
		return nil, DeficitOutput{}, fmt.Errorf("detecting deficit: %w", err)
	}

	strong := make([]string, 0, len(analysis.StrongAxes))
	for _, a := range analysis.StrongAxes {
		strong = append(strong, a.String())
	}

	out := DeficitOutput{
		Result:           summarizeResult(analysis.Result, false),
		Deficit:          axisOrEmpty(analysis.Deficit),
		DeficitDominance: analysis.DeficitDominance,
		StrongAxes:       strong,
		HarmonyNote:      string(analysis.HarmonyNote),
		Recommendations:  analysis.Recommendations,
	}

	if args.Save {
		rec, err := store.NewDeficitRecord(analysis)
		if err != nil {
			return nil, DeficitOutput{}, fmt.Errorf("building record: %w", err)
		}
		if out.RecordID, err = s.store.Save(ctx, rec); err != nil {
			return nil, DeficitOutput{}, fmt.Errorf("saving analysis: %w", err)
		}
	}

	return nil, out, nil
}

// handleHistory implements the resonance_history tool.
func (s *Server) handleHistory(ctx context.Context, req *sdk.CallToolRequest, args HistoryInput) (_ *sdk.CallToolResult, _ HistoryOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ToolHistory, start, retErr, sanitizeToolParams(map[string]any{
			"kind": args.Kind, "limit": args.Limit,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ToolHistory); err != nil {
		return nil, HistoryOutput{}, err
	}

	kind := constants.RecordKind(strings.ToLower(strings.TrimSpace(args.Kind)))
	if kind != "" && !kind.Valid() {
		return nil, HistoryOutput{}, fmt.Errorf("%w: kind %q (valid: run, comparison, deficit)", ErrInvalidHistoryQuery, args.Kind)
	}
	if args.Limit < 0 {
		return nil, HistoryOutput{}, fmt.Errorf("%w: limit must be non-negative, got %d", ErrInvalidHistoryQuery, args.Limit)
	}
	limit := args.Limit
	if limit == 0 {
		limit = constants.DefaultHistoryLimit
	}

	records, err := s.store.List(ctx, store.Filter{Kind: kind, Limit: limit})
	if err != nil {
		return nil, HistoryOutput{}, fmt.Errorf("listing history: %w", err)
	}

	items := make([]HistoryItem, 0, len(records))
	for _, rec := range records {
		items = append(items, HistoryItem{
			ID:        rec.ID,
			Kind:      rec.Kind.String(),
			CreatedAt: rec.CreatedAt.Format(time.RFC3339),
			Cycles:    rec.Cycles,
			Summary:   rec.Summary,
		})
	}

	return nil, HistoryOutput{Records: items, Count: len(items)}, nil
}

// handleHistoryResource renders the most recent records as markdown.
func (s *Server) handleHistoryResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	records, err := s.store.List(ctx, store.Filter{Limit: constants.DefaultHistoryLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# Resonance History\n\n")
	if len(records) == 0 {
		sb.WriteString("No saved results yet. Pass `save: true` to a resonance tool to record one.\n")
	}
	for _, rec := range records {
		fmt.Fprintf(&sb, "- `%s` **%s** (%d cycles, %s): %s\n",
			rec.ID, rec.Kind, rec.Cycles, rec.CreatedAt.Format(time.RFC3339), rec.Summary)
	}

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      HistoryResourceURI,
				MIMEType: "text/markdown",
				Text:     sb.String(),
			},
		},
	}, nil
}

func summarizeResult(r *models.ResonanceResult, withTrajectory bool) ResultSummary {
	out := ResultSummary{
		InitialState:   r.InitialState.Slice(),
		InitialHarmony: r.InitialHarmony,
		FinalState:     r.FinalState.Slice(),
		FinalHarmony:   r.FinalHarmony,
		PeakHarmony:    r.PeakHarmony,
		PeakCycle:      r.PeakCycle,
		Cycles:         r.Cycles,
		Bounds:         r.Bounds.Slice(),
		Dominance:      append([]float64(nil), r.Dominance[:]...),
		DominantAxis:   r.DominantAxis.String(),
		Deficit:        axisOrEmpty(r.Deficit),
	}

	if withTrajectory {
		out.Trajectory = make([]SampleSummary, 0, len(r.Trajectory))
		for _, sample := range r.Trajectory {
			out.Trajectory = append(out.Trajectory, SampleSummary{
				Cycle:   sample.Cycle,
				State:   sample.State.Slice(),
				Harmony: sample.Harmony,
			})
		}
	}
	return out
}

func axisOrEmpty(o models.OptionalAxis) string {
	if a, ok := o.Get(); ok {
		return a.String()
	}
	return ""
}
