package queue

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type identifiers. Each type carries its own typed payload struct,
// decoded at dequeue time.
const (
	TaskProcessMessage   = "pipeline.message.process"
	TaskReanalyzeSession = "pipeline.session.reanalyze"
	TaskDailyAlerts      = "alerts.daily"
	TaskWeeklyAlerts     = "alerts.weekly"
)

// ProcessMessagePayload carries one inbound WhatsApp message through the
// analysis pipeline.
type ProcessMessagePayload struct {
	SessionID string `json:"sessionId"`
	TenantID  string `json:"tenantId"`
	ClientID  string `json:"clientId,omitempty"`
	Phone     string `json:"phone"`
	Content   string `json:"messageContent"`
}

// ReanalyzeSessionPayload requests a full re-analysis of a session's history.
type ReanalyzeSessionPayload struct {
	SessionID string `json:"sessionId"`
	TenantID  string `json:"tenantId"`
	ClientID  string `json:"clientId,omitempty"`
	Phone     string `json:"phone"`
}

// AlertBatchPayload identifies one scheduled alert batch run.
type AlertBatchPayload struct {
	BatchID string `json:"batchId"`
}

// BatchTaskID builds a deterministic task identifier for batch jobs so that
// re-enqueueing the same batch is deduplicated by the broker.
func BatchTaskID(jobKind, batchID string, index int) string {
	return fmt.Sprintf("%s_%s_%d", jobKind, batchID, index)
}

func NewProcessMessageTask(payload ProcessMessagePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskProcessMessage, data), nil
}

func ParseProcessMessagePayload(task *asynq.Task) (ProcessMessagePayload, error) {
	var payload ProcessMessagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ProcessMessagePayload{}, err
	}
	return payload, nil
}

func NewReanalyzeSessionTask(payload ReanalyzeSessionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReanalyzeSession, data), nil
}

func ParseReanalyzeSessionPayload(task *asynq.Task) (ReanalyzeSessionPayload, error) {
	var payload ReanalyzeSessionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ReanalyzeSessionPayload{}, err
	}
	return payload, nil
}

func NewAlertBatchTask(taskType string, payload AlertBatchPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, data), nil
}

func ParseAlertBatchPayload(task *asynq.Task) (AlertBatchPayload, error) {
	var payload AlertBatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AlertBatchPayload{}, err
	}
	return payload, nil
}
