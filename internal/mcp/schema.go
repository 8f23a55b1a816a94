package mcp

// RunInput defines the input for the resonance_run tool.
type RunInput struct {
	State      []float64 `json:"state" jsonschema:"Initial state as four values [a, b, c, d]"`
	Cycles     int       `json:"cycles,omitempty" jsonschema:"Number of cycles to run (0 uses the configured default)"`
	Bounds     []float64 `json:"bounds,omitempty" jsonschema:"Per-axis upper bounds; defaults to the anchor (1,1,1,1)"`
	Interval   int       `json:"interval,omitempty" jsonschema:"Cycles between trajectory samples (0 uses the configured default)"`
	MaxSamples int       `json:"max_samples,omitempty" jsonschema:"Keep only the most recent N periodic samples (0 keeps all)"`
	Trajectory bool      `json:"trajectory,omitempty" jsonschema:"Include the sampled trajectory in the output"`
	Save       bool      `json:"save,omitempty" jsonschema:"Save the result to the history store"`
}

// ResultSummary is the client-facing view of a single run.
type ResultSummary struct {
	InitialState   []float64       `json:"initial_state" jsonschema:"State the run started from"`
	InitialHarmony float64         `json:"initial_harmony" jsonschema:"Harmony of the initial state"`
	FinalState     []float64       `json:"final_state" jsonschema:"State after the last cycle"`
	FinalHarmony   float64         `json:"final_harmony" jsonschema:"Harmony of the final state"`
	PeakHarmony    float64         `json:"peak_harmony" jsonschema:"Best harmony seen during the run"`
	PeakCycle      int             `json:"peak_cycle" jsonschema:"Cycle index at which the peak was reached"`
	Cycles         int             `json:"cycles" jsonschema:"Number of cycles run"`
	Bounds         []float64       `json:"bounds" jsonschema:"Upper bounds applied to each axis"`
	Dominance      []float64       `json:"dominance" jsonschema:"Percentage of cycles each axis held the maximum value"`
	DominantAxis   string          `json:"dominant_axis" jsonschema:"Axis with the highest dominance (A-D)"`
	Deficit        string          `json:"deficit,omitempty" jsonschema:"Deficit axis, empty when there is none"`
	Trajectory     []SampleSummary `json:"trajectory,omitempty" jsonschema:"Sampled trajectory when requested"`
}

// SampleSummary is one trajectory point.
type SampleSummary struct {
	Cycle   int       `json:"cycle"`
	State   []float64 `json:"state"`
	Harmony float64   `json:"harmony"`
}

// RunOutput defines the output for the resonance_run tool.
type RunOutput struct {
	Result   ResultSummary `json:"result" jsonschema:"Summary of the run"`
	RecordID string        `json:"record_id,omitempty" jsonschema:"History record ID when the result was saved"`
	Message  string        `json:"message" jsonschema:"Human-readable result message"`
}

// CompareInput defines the input for the resonance_compare tool.
type CompareInput struct {
	A      []float64 `json:"a" jsonschema:"First state as four values"`
	B      []float64 `json:"b" jsonschema:"Second state as four values"`
	Cycles int       `json:"cycles,omitempty" jsonschema:"Number of cycles to run each state (0 uses the configured default)"`
	Save   bool      `json:"save,omitempty" jsonschema:"Save the comparison to the history store"`
}

// CompareOutput defines the output for the resonance_compare tool.
type CompareOutput struct {
	A                   ResultSummary `json:"a" jsonschema:"Run of the first state"`
	B                   ResultSummary `json:"b" jsonschema:"Run of the second state"`
	ConvergenceDistance float64       `json:"convergence_distance" jsonschema:"Euclidean distance between the final states"`
	SameDeficit         bool          `json:"same_deficit" jsonschema:"Whether both runs reported the same deficit"`
	HarmonyDifference   float64       `json:"harmony_difference" jsonschema:"Absolute difference of the final harmonies"`
	Quality             string        `json:"quality" jsonschema:"EXCELLENT, GOOD, ACCEPTABLE or POOR"`
	RecordID            string        `json:"record_id,omitempty" jsonschema:"History record ID when the comparison was saved"`
	Message             string        `json:"message" jsonschema:"Human-readable result message"`
}

// DeficitInput defines the input for the resonance_deficit tool.
type DeficitInput struct {
	State  []float64 `json:"state" jsonschema:"State to analyze as four values"`
	Cycles int       `json:"cycles,omitempty" jsonschema:"Number of cycles to run (0 uses the configured deficit budget)"`
	Save   bool      `json:"save,omitempty" jsonschema:"Save the analysis to the history store"`
}

// DeficitOutput defines the output for the resonance_deficit tool.
type DeficitOutput struct {
	Result           ResultSummary `json:"result" jsonschema:"Summary of the underlying run"`
	Deficit          string        `json:"deficit,omitempty" jsonschema:"Deficit axis, empty when there is none"`
	DeficitDominance float64       `json:"deficit_dominance,omitempty" jsonschema:"Dominance percentage of the deficit axis"`
	StrongAxes       []string      `json:"strong_axes" jsonschema:"Axes that almost never needed pulling up"`
	HarmonyNote      string        `json:"harmony_note" jsonschema:"balanced, moderate or significant-imbalance"`
	Recommendations  []string      `json:"recommendations" jsonschema:"Suggested improvements"`
	RecordID         string        `json:"record_id,omitempty" jsonschema:"History record ID when the analysis was saved"`
}

// HistoryInput defines the input for the resonance_history tool.
type HistoryInput struct {
	Kind  string `json:"kind,omitempty" jsonschema:"Filter by record kind: run, comparison or deficit"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum records to return (default: 20)"`
}

// HistoryItem is one saved record without its payload.
type HistoryItem struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	CreatedAt string `json:"created_at"`
	Cycles    int    `json:"cycles"`
	Summary   string `json:"summary"`
}

// HistoryOutput defines the output for the resonance_history tool.
type HistoryOutput struct {
	Records []HistoryItem `json:"records" jsonschema:"Saved records, newest first"`
	Count   int           `json:"count" jsonschema:"Number of records returned"`
}
