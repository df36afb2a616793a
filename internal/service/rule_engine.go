package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	"github.com/Gilbert-2/security-threat-detection-sub000/pkg/jobs"
)

type ruleEngineRuleRepo interface {
	ListActive(ctx context.Context) ([]models.ResponseRule, error)
	RecordTrigger(ctx context.Context, id string, triggeredAt time.Time) error
}

type ruleEngineAlertRepo interface {
	CreateResponseAction(ctx context.Context, action *models.ResponseAction) error
}

type ruleEngineUserRepo interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
}

type ruleEngineNotifier interface {
	Create(ctx context.Context, req CreateNotificationRequest) (*models.Notification, error)
}

// RuleEngineConfig tunes the evaluation worker pool.
type RuleEngineConfig struct {
	Workers    int
	MaxRetries int
}

// RuleEngine evaluates active response rules against incoming alerts on a
// background worker queue. Matching rules record a response action per
// configured action and notify supervisors and above for notify actions.
type RuleEngine struct {
	rules    ruleEngineRuleRepo
	alerts   ruleEngineAlertRepo
	users    ruleEngineUserRepo
	notifier ruleEngineNotifier
	metrics  *MetricsService
	logger   *zap.Logger
	queue    *jobs.Queue
}

// NewRuleEngine constructs the engine and its backing queue.
func NewRuleEngine(rules ruleEngineRuleRepo, alerts ruleEngineAlertRepo, users ruleEngineUserRepo, notifier ruleEngineNotifier, metrics *MetricsService, logger *zap.Logger, cfg RuleEngineConfig) *RuleEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := &RuleEngine{
		rules:    rules,
		alerts:   alerts,
		users:    users,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
	}
	engine.queue = jobs.NewQueue("rule-engine", engine.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return engine
}

// Start begins background evaluation.
func (e *RuleEngine) Start(ctx context.Context) {
	e.queue.Start(ctx)
}

// Stop drains the worker pool.
func (e *RuleEngine) Stop() {
	e.queue.Stop()
}

// Ingest enqueues an alert for evaluation. Never blocks the caller beyond
// queue backpressure; a full queue drops the evaluation with a log line.
func (e *RuleEngine) Ingest(alert *models.Alert) {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    "evaluate-alert",
		Payload: alert,
	}
	if err := e.queue.Enqueue(job); err != nil {
		e.logger.Warn("failed to enqueue alert for rule evaluation",
			zap.String("alert_id", alert.ID), zap.Error(err))
	}
}

func (e *RuleEngine) handle(ctx context.Context, job jobs.Job) error {
	alert, ok := job.Payload.(*models.Alert)
	if !ok {
		e.logger.Error("rule engine received unexpected payload", zap.String("job_id", job.ID))
		return nil
	}

	rules, err := e.rules.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("load active rules: %w", err)
	}

	for i := range rules {
		rule := &rules[i]
		if err := rule.DecodePayloads(); err != nil {
			e.logger.Warn("skipping rule with invalid payloads", zap.String("rule_id", rule.ID), zap.Error(err))
			continue
		}
		if !rule.Matches(alert) {
			continue
		}
		e.trigger(ctx, rule, alert)
	}
	return nil
}

// trigger applies a matched rule's side effects. Failures past this point
// are logged, never returned: requeueing the job would bump the trigger
// count again and re-notify staff for the same alert.
func (e *RuleEngine) trigger(ctx context.Context, rule *models.ResponseRule, alert *models.Alert) {
	now := time.Now().UTC()
	if e.metrics != nil {
		e.metrics.ObserveRuleTriggered()
	}
	if err := e.rules.RecordTrigger(ctx, rule.ID, now); err != nil {
		e.logger.Warn("failed to record rule trigger", zap.String("rule_id", rule.ID), zap.Error(err))
	}

	for _, action := range rule.Actions {
		record := &models.ResponseAction{
			AlertID:    alert.ID,
			RuleID:     &rule.ID,
			ActionType: action.Type,
			Detail:     actionDetail(action, alert),
			ExecutedAt: now,
		}
		if err := e.alerts.CreateResponseAction(ctx, record); err != nil {
			e.logger.Error("failed to record response action",
				zap.String("rule_id", rule.ID), zap.String("alert_id", alert.ID), zap.Error(err))
			continue
		}

		if action.Type == models.RuleActionNotify {
			e.notifyStaff(ctx, rule, alert)
		}
	}

	e.logger.Info("response rule triggered",
		zap.String("rule_id", rule.ID),
		zap.String("alert_id", alert.ID),
		zap.Int("actions", len(rule.Actions)))
}

// notifyStaff fans a security notification out to supervisors, managers and
// admins. Notification failures are logged, not retried: the response
// action record is the durable trace.
func (e *RuleEngine) notifyStaff(ctx context.Context, rule *models.ResponseRule, alert *models.Alert) {
	if e.notifier == nil || e.users == nil {
		return
	}

	for _, role := range []models.UserRole{models.RoleSupervisor, models.RoleManager, models.RoleAdmin} {
		role := role
		active := true
		staff, _, err := e.users.List(ctx, models.UserFilter{Role: &role, Active: &active, PageSize: 50})
		if err != nil {
			e.logger.Warn("failed to list staff for rule notification", zap.String("role", string(role)), zap.Error(err))
			continue
		}
		for _, user := range staff {
			_, err := e.notifier.Create(ctx, CreateNotificationRequest{
				UserID:    user.ID,
				Type:      models.NotificationTypeSecurity,
				Title:     fmt.Sprintf("Rule triggered: %s", rule.Name),
				Message:   fmt.Sprintf("%s alert on camera %s: %s", alert.Severity, alert.Camera, alert.Description),
				RelatedID: &alert.ID,
			})
			if err != nil {
				e.logger.Warn("failed to create rule notification", zap.String("user_id", user.ID), zap.Error(err))
			}
		}
	}
}

func actionDetail(action models.RuleAction, alert *models.Alert) string {
	switch action.Type {
	case models.RuleActionNotify:
		return "notified security staff"
	case models.RuleActionLock:
		if action.Target != "" {
			return fmt.Sprintf("lockdown issued for %s", action.Target)
		}
		return fmt.Sprintf("lockdown issued for %s", alert.Location)
	case models.RuleActionRecord:
		return fmt.Sprintf("extended recording on camera %s", alert.Camera)
	case models.RuleActionEscalate:
		return "escalated to incident response"
	}
	return string(action.Type)
}
