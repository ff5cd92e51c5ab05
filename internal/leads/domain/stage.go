// Package domain holds the lead domain model: the CRM status pipeline and
// the pure decision function mapping an inferred buying stage onto it.
package domain

// Status is a lead's position in the CRM pipeline.
type Status string

const (
	StatusNew         Status = "new"
	StatusContacted   Status = "contacted"
	StatusQualified   Status = "qualified"
	StatusNegotiation Status = "negotiation"
	StatusClosed      Status = "closed"
	StatusWon         Status = "won"
)

// IsTerminal reports whether a lead in this status may never transition again
// automatically. Protects a won deal from being reclassified backward by a
// later LLM label.
func (s Status) IsTerminal() bool {
	return s == StatusClosed || s == StatusWon
}

// rank orders the non-terminal pipeline for the monotonic mode.
var rank = map[Status]int{
	StatusNew:         0,
	StatusContacted:   1,
	StatusQualified:   2,
	StatusNegotiation: 3,
	StatusClosed:      4,
	StatusWon:         4,
}

// stageMap maps the LLM buying-stage labels (pt-BR) to pipeline statuses.
var stageMap = map[string]Status{
	"Curiosidade":  StatusContacted,
	"Consideração": StatusQualified,
	"Decisão":      StatusNegotiation,
	"Compra":       StatusClosed,
}

// StageTarget resolves a buying-stage label to a pipeline status.
func StageTarget(buyingStage string) (Status, bool) {
	t, ok := stageMap[buyingStage]
	return t, ok
}

// Decision is the outcome of evaluating a buying stage against the current
// lead status.
type Decision struct {
	Target     Status
	Transition bool
}

// EvaluateStage decides whether a lead should move. No-ops: unknown label,
// terminal current status, or target equal to current. With monotonic set,
// a target ranked below the current status is also a no-op (latest-wins
// otherwise, so a lead can regress to an earlier stage).
func EvaluateStage(current Status, buyingStage string, monotonic bool) Decision {
	target, ok := StageTarget(buyingStage)
	if !ok {
		return Decision{}
	}
	if current.IsTerminal() {
		return Decision{}
	}
	if current == target {
		return Decision{}
	}
	if monotonic && rank[target] < rank[current] {
		return Decision{}
	}
	return Decision{Target: target, Transition: true}
}
