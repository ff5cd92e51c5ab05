// Package analysis runs the asynchronous message pipeline: intent-matched
// analytics replies and LLM sales coaching over conversation history.
package analysis

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"elite_crm_backend/internal/chat"
	"elite_crm_backend/internal/events"
	"elite_crm_backend/internal/intent"
	"elite_crm_backend/internal/leads/scoring"
	leadsvc "elite_crm_backend/internal/leads/service"
	"elite_crm_backend/internal/queue"
	"elite_crm_backend/internal/whatsapp"
	"elite_crm_backend/platform/logger"
)

const (
	coachingHistoryLimit  = 10
	reanalyzeHistoryLimit = 50
)

// Orchestrator consumes pipeline tasks. Failure policy: an error return
// triggers a broker retry, so only steps whose repetition is safe and whose
// failure blocks the whole job may return errors. Degradable steps log and
// continue instead.
type Orchestrator struct {
	chats     *chat.Repository
	repo      *Repository
	ml        *MLClient
	llm       Completer
	sender    whatsapp.Sender
	leads     *leadsvc.Service
	scoring   *scoring.Service
	bus       events.Bus
	mlEnabled bool
	log       *logger.Logger
}

func NewOrchestrator(
	chats *chat.Repository,
	repo *Repository,
	ml *MLClient,
	llm Completer,
	sender whatsapp.Sender,
	leads *leadsvc.Service,
	scoringSvc *scoring.Service,
	bus events.Bus,
	mlEnabled bool,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		chats:     chats,
		repo:      repo,
		ml:        ml,
		llm:       llm,
		sender:    sender,
		leads:     leads,
		scoring:   scoringSvc,
		bus:       bus,
		mlEnabled: mlEnabled && ml != nil,
		log:       log,
	}
}

// Register mounts the pipeline handlers on the worker.
func (o *Orchestrator) Register(w *queue.Worker) {
	w.HandleFunc(queue.TaskProcessMessage, o.HandleProcessMessage)
	w.HandleFunc(queue.TaskReanalyzeSession, o.HandleReanalyzeSession)
}

// HandleProcessMessage runs the pipeline for one inbound message: the
// analytics branch answers intent-matched questions and returns early;
// everything else flows into the coaching branch.
func (o *Orchestrator) HandleProcessMessage(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.ParseProcessMessagePayload(task)
	if err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	ids, err := parseIDs(payload.SessionID, payload.TenantID, payload.ClientID)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if o.mlEnabled {
		if match := intent.Detect(payload.Content); match.Matched {
			return o.runAnalytics(ctx, ids, payload.Phone, payload.Content, match)
		}
	}

	return o.runCoaching(ctx, ids, payload.Phone, coachingHistoryLimit)
}

// HandleReanalyzeSession reruns coaching over the session's recent history.
func (o *Orchestrator) HandleReanalyzeSession(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.ParseReanalyzeSessionPayload(task)
	if err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	ids, err := parseIDs(payload.SessionID, payload.TenantID, payload.ClientID)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	return o.runCoaching(ctx, ids, payload.Phone, reanalyzeHistoryLimit)
}

type pipelineIDs struct {
	session uuid.UUID
	tenant  uuid.UUID
	client  uuid.UUID // Nil when the contact is unknown.
}

func parseIDs(sessionID, tenantID, clientID string) (pipelineIDs, error) {
	var ids pipelineIDs
	var err error

	if ids.session, err = uuid.Parse(sessionID); err != nil {
		return ids, fmt.Errorf("invalid session id %q", sessionID)
	}
	if ids.tenant, err = uuid.Parse(tenantID); err != nil {
		return ids, fmt.Errorf("invalid tenant id %q", tenantID)
	}
	if clientID != "" {
		if ids.client, err = uuid.Parse(clientID); err != nil {
			return ids, fmt.Errorf("invalid client id %q", clientID)
		}
	}
	return ids, nil
}

// runAnalytics answers an intent-matched question. The reply is delivered
// even when the analytics service fails, as a friendly degraded message.
func (o *Orchestrator) runAnalytics(ctx context.Context, ids pipelineIDs, phone, content string, match intent.Match) error {
	params := intent.ExtractParameters(content, match.Intent)

	clientName := "Cliente"
	if ids.client != uuid.Nil {
		if name, err := o.repo.ClientName(ctx, ids.tenant, ids.client); err != nil {
			o.log.DatabaseError("resolve client name", err)
		} else if name != "" {
			clientName = name
		}
	}

	var reply string
	raw, err := o.ml.Analyze(ctx, AnalyzeRequest{
		Intent:   match.Intent,
		ClientID: ids.client.String(),
		Params:   params,
	})
	if err != nil {
		o.log.UpstreamError("ml-service", string(match.Intent), err)
		reply = FormatError(err)
		o.bus.Publish(ctx, events.MLAnalysisFailed{
			BaseEvent: events.NewBaseEvent(),
			SessionID: ids.session,
			TenantID:  ids.tenant,
			Intent:    string(match.Intent),
			Reason:    err.Error(),
		})
	} else {
		reply = FormatResponse(match.Intent, raw, clientName)
		o.bus.Publish(ctx, events.MLAnalysisCompleted{
			BaseEvent: events.NewBaseEvent(),
			SessionID: ids.session,
			TenantID:  ids.tenant,
			Intent:    string(match.Intent),
			Response:  reply,
		})
	}

	// The reply must land in the history; without it a retry is the only
	// way the contact ever gets an answer.
	if _, err := o.chats.AppendMessage(ctx, ids.session, chat.RoleAssistant, chat.SenderBot, "ml-agent", reply); err != nil {
		return fmt.Errorf("persist analytics reply: %w", err)
	}

	if o.sender != nil {
		if err := o.sender.SendMessage(ctx, phone, reply); err != nil {
			o.log.UpstreamError("whatsapp", "send analytics reply", err)
		}
	}

	return nil
}

// runCoaching produces a sales-coaching snapshot from recent history and
// feeds the buying stage into the lead state machine. Coaching is advisory:
// once history is read, failures degrade rather than retry.
func (o *Orchestrator) runCoaching(ctx context.Context, ids pipelineIDs, phone string, historyLimit int) error {
	if ids.client != uuid.Nil {
		if _, err := o.scoring.Recompute(ctx, ids.tenant, ids.client); err != nil {
			o.log.DatabaseError("recompute score", err)
		}
	}

	history, err := o.chats.History(ctx, ids.session, historyLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(history) == 0 || o.llm == nil {
		return nil
	}

	clientName := ""
	if ids.client != uuid.Nil {
		clientName, _ = o.repo.ClientName(ctx, ids.tenant, ids.client)
	}

	completion, err := o.llm.Complete(ctx, coachingSystemPrompt, buildCoachingPrompt(clientName, history))
	if err != nil {
		o.log.UpstreamError("gemini", "coaching completion", err)
		return nil
	}

	result, err := ParseCoachingResult(completion)
	if err != nil {
		o.log.UpstreamError("gemini", "coaching parse", err)
		return nil
	}

	if _, err := o.repo.SaveAnalysis(ctx, ids.tenant, ids.session, result); err != nil {
		o.log.DatabaseError("save coaching analysis", err)
		return nil
	}

	o.bus.Publish(ctx, events.SalesCoachingUpdated{
		BaseEvent:         events.NewBaseEvent(),
		SessionID:         ids.session,
		TenantID:          ids.tenant,
		Sentiment:         result.Sentiment,
		BuyingStage:       result.BuyingStage,
		SuggestedStrategy: result.SuggestedStrategy,
		NextBestAction:    result.NextBestAction,
	})

	if ids.client != uuid.Nil {
		if err := o.leads.ApplyBuyingStage(ctx, ids.tenant, ids.client, phone, result.BuyingStage); err != nil {
			o.log.DatabaseError("apply buying stage", err)
		}
	}

	return nil
}
