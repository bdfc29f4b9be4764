package telemetry

import "time"

// AgentStatus is the run status of a pipeline agent.
type AgentStatus string

const (
	AgentIdle      AgentStatus = "idle"
	AgentRunning   AgentStatus = "running"
	AgentCompleted AgentStatus = "completed"
	AgentFailed    AgentStatus = "failed"
	AgentUnknown   AgentStatus = "unknown"
)

// ParseAgentStatus maps a raw status string to an AgentStatus.
func ParseAgentStatus(raw string) AgentStatus {
	switch AgentStatus(raw) {
	case AgentIdle, AgentRunning, AgentCompleted, AgentFailed:
		return AgentStatus(raw)
	default:
		return AgentUnknown
	}
}

// Agent is one pipeline worker stage tracked by identity.
type Agent struct {
	ID         string
	Name       string
	Status     AgentStatus
	Executions int
	AvgTime    float64
	Successes  int
	Failures   int
	Active     bool
}

// FailureRate returns failures/executions, or 0 when there have been no
// executions.
func (a Agent) FailureRate() float64 {
	if a.Executions <= 0 {
		return 0
	}
	return float64(a.Failures) / float64(a.Executions)
}

// PlanStepStatus is the status of one ordered pipeline stage.
type PlanStepStatus string

const (
	StepPending    PlanStepStatus = "pending"
	StepInProgress PlanStepStatus = "in_progress"
	StepCompleted  PlanStepStatus = "completed"
	StepFailed     PlanStepStatus = "failed"
	StepSkipped    PlanStepStatus = "skipped"
)

// PlanStep is an ordered stage of the pipeline's execution plan.
// RelatedAgentID is empty when no agent matches the step title.
type PlanStep struct {
	ID             string
	Title          string
	Status         PlanStepStatus
	RelatedAgentID string
}

// Orientation says which direction of a quality metric is good.
type Orientation int

const (
	HigherIsBetter Orientation = iota
	LowerIsBetter
)

// QualityMetric is one named quality/validation measurement.
// Value is nil when the backend sent nothing parseable. Baseline is nil
// until enough history accumulates.
type QualityMetric struct {
	ID          string
	Label       string
	Value       *float64
	Display     string
	Orientation Orientation
	Severity    Severity
	Baseline    *float64
}

// Quality bundles the metric list with any embedded validation-layer
// failure messages.
type Quality struct {
	Metrics       []QualityMetric
	LayerFailures []string
}

// Summary is the aggregate view of the pipeline shown in the console header.
type Summary struct {
	CurrentDocument string
	Processed       int
	Total           int
	Progress        float64
	TimeOnDocument  *float64
	LastLogAge      *float64
	Severity        Severity
	AlertMessages   []string
	Errors          int
	Warnings        int
}

// Snapshot is the canonical, fully-populated form of one poll payload.
type Snapshot struct {
	Summary Summary
	Agents  []Agent
	Plan    []PlanStep
	Quality Quality
	Time    time.Time
}

// Event is one discrete streamed log occurrence.
type Event struct {
	ID        string
	Time      time.Time
	Level     string
	Severity  Severity
	Message   string
	AgentName string
}
