package agents

// Role identifies the author of a state message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single turn in the run's message history.
type Message struct {
	Role       Role   `json:"role"`
	Content    string `json:"content"`
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// SharedState is the single record threaded through a workflow run.
// Exactly one goroutine owns a given state value at a time; transitions
// operate copy-on-write via Clone and Merge.
type SharedState struct {
	// Message history, append-only within a run.
	Messages []Message

	// Task identity.
	TaskID    string
	TaskType  string
	TaskInput map[string]interface{}

	// Per-node outputs and errors. An error entry does not remove the
	// corresponding output entry.
	AgentOutputs map[string]map[string]interface{}
	AgentErrors  map[string]string

	// Most recent tool results for the current iteration.
	ToolResults map[string]interface{}

	// Decisions accumulated across the whole run.
	Decisions []Decision

	// FinalDecision is the run's terminal output, when chosen.
	FinalDecision *Decision

	// Metadata passes through the engine unmodified.
	Metadata map[string]interface{}

	// Loop bookkeeping.
	Iteration     int
	MaxIterations int

	// ShouldEnd signals termination; settable by any node.
	ShouldEnd bool
}

// NewSharedState builds a state seeded with task identity.
func NewSharedState(taskID, taskType string, taskInput map[string]interface{}) *SharedState {
	return &SharedState{
		TaskID:       taskID,
		TaskType:     taskType,
		TaskInput:    taskInput,
		AgentOutputs: make(map[string]map[string]interface{}),
		AgentErrors:  make(map[string]string),
		ToolResults:  make(map[string]interface{}),
		Metadata:     make(map[string]interface{}),
	}
}

// Clone returns a deep-enough copy for copy-on-write transitions: all
// maps and slices are fresh, map values are shared (treated as
// immutable once stored).
func (s *SharedState) Clone() *SharedState {
	if s == nil {
		return nil
	}

	out := *s

	out.Messages = append([]Message(nil), s.Messages...)
	out.Decisions = append([]Decision(nil), s.Decisions...)

	out.AgentOutputs = make(map[string]map[string]interface{}, len(s.AgentOutputs))
	for k, v := range s.AgentOutputs {
		out.AgentOutputs[k] = v
	}
	out.AgentErrors = make(map[string]string, len(s.AgentErrors))
	for k, v := range s.AgentErrors {
		out.AgentErrors[k] = v
	}
	out.ToolResults = make(map[string]interface{}, len(s.ToolResults))
	for k, v := range s.ToolResults {
		out.ToolResults[k] = v
	}
	out.Metadata = make(map[string]interface{}, len(s.Metadata))
	for k, v := range s.Metadata {
		out.Metadata[k] = v
	}

	if s.FinalDecision != nil {
		fd := *s.FinalDecision
		out.FinalDecision = &fd
	}

	return &out
}

// AppendMessage adds a turn to the history.
func (s *SharedState) AppendMessage(role Role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}

// RecordOutput stores an agent's result, last-write-wins per agent.
func (s *SharedState) RecordOutput(agentID string, result map[string]interface{}) {
	s.AgentOutputs[agentID] = result
}

// RecordError stores an agent's last error message.
func (s *SharedState) RecordError(agentID string, msg string) {
	s.AgentErrors[agentID] = msg
}

// AddDecisions appends decisions to the run's accumulated list.
func (s *SharedState) AddDecisions(decisions ...Decision) {
	s.Decisions = append(s.Decisions, decisions...)
}

// Symbol returns the task's subject symbol, or "UNKNOWN" when absent.
func (s *SharedState) Symbol() string {
	if v, ok := s.TaskInput["symbol"].(string); ok && v != "" {
		return v
	}
	return "UNKNOWN"
}
