package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	appErrors "github.com/Gilbert-2/security-threat-detection-sub000/pkg/errors"
)

type ruleRepository interface {
	List(ctx context.Context, filter models.RuleFilter) ([]models.ResponseRule, int, error)
	FindByID(ctx context.Context, id string) (*models.ResponseRule, error)
	Create(ctx context.Context, rule *models.ResponseRule) error
	Update(ctx context.Context, rule *models.ResponseRule) error
	UpdateStatus(ctx context.Context, id string, status models.RuleStatus) error
	Delete(ctx context.Context, id string) error
}

// RuleRequest is the create/update payload for a response rule.
type RuleRequest struct {
	Name        string                 `json:"name" validate:"required"`
	Description string                 `json:"description"`
	Conditions  []models.RuleCondition `json:"conditions" validate:"required,min=1,dive"`
	Actions     []models.RuleAction    `json:"actions" validate:"required,min=1,dive"`
}

// ResponseRuleService manages automated response rules. New rules start
// inactive; activation is a separate, explicit call.
type ResponseRuleService struct {
	repo      ruleRepository
	auditor   alertAuditor
	validator *validator.Validate
	logger    *zap.Logger
}

// NewResponseRuleService creates an instance of ResponseRuleService.
func NewResponseRuleService(repo ruleRepository, auditor alertAuditor, validate *validator.Validate, logger *zap.Logger) *ResponseRuleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ResponseRuleService{repo: repo, auditor: auditor, validator: validate, logger: logger}
}

// List returns a page of rules with decoded conditions and actions.
func (s *ResponseRuleService) List(ctx context.Context, filter models.RuleFilter) ([]models.ResponseRule, *models.Pagination, error) {
	rules, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rules")
	}

	for i := range rules {
		if err := rules[i].DecodePayloads(); err != nil {
			s.logger.Warn("failed to decode rule payloads", zap.String("rule_id", rules[i].ID), zap.Error(err))
		}
	}

	page := models.NormalizePageQuery(filter.Page, filter.PageSize)
	pagination := models.NewPagination(page.Page, page.Limit, total)
	return rules, pagination, nil
}

// Get returns a rule by ID.
func (s *ResponseRuleService) Get(ctx context.Context, id string) (*models.ResponseRule, error) {
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "rule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rule")
	}
	if err := rule.DecodePayloads(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode rule")
	}
	return rule, nil
}

// Create stores a new rule in the inactive status.
func (s *ResponseRuleService) Create(ctx context.Context, req RuleRequest, actorID string) (*models.ResponseRule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rule payload")
	}

	rule := &models.ResponseRule{
		Name:        req.Name,
		Description: req.Description,
		Status:      models.RuleStatusInactive,
		CreatedBy:   actorID,
		Conditions:  req.Conditions,
		Actions:     req.Actions,
	}
	if err := rule.EncodePayloads(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode rule")
	}

	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create rule")
	}

	s.audit(ctx, actorID, models.AuditActionRuleCreate, rule.ID, rule)
	return rule, nil
}

// Update replaces a rule's name, description, conditions and actions. The
// activation status is untouched.
func (s *ResponseRuleService) Update(ctx context.Context, id string, req RuleRequest, actorID string) (*models.ResponseRule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rule payload")
	}

	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "rule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rule")
	}

	rule.Name = req.Name
	rule.Description = req.Description
	rule.Conditions = req.Conditions
	rule.Actions = req.Actions
	if err := rule.EncodePayloads(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode rule")
	}

	if err := s.repo.Update(ctx, rule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update rule")
	}

	s.audit(ctx, actorID, models.AuditActionRuleUpdate, rule.ID, rule)
	return rule, nil
}

// Activate turns a rule on. Activating an active rule is a no-op.
func (s *ResponseRuleService) Activate(ctx context.Context, id, actorID string) error {
	return s.setStatus(ctx, id, actorID, models.RuleStatusActive, models.AuditActionRuleActivate)
}

// Deactivate turns a rule off. Deactivating an inactive rule is a no-op.
func (s *ResponseRuleService) Deactivate(ctx context.Context, id, actorID string) error {
	return s.setStatus(ctx, id, actorID, models.RuleStatusInactive, models.AuditActionRuleDeactivate)
}

func (s *ResponseRuleService) setStatus(ctx context.Context, id, actorID string, status models.RuleStatus, action string) error {
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "rule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rule")
	}

	if rule.Status == status {
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update rule status")
	}

	s.audit(ctx, actorID, action, id, map[string]string{"status": string(status)})
	return nil
}

// Delete removes a rule permanently.
func (s *ResponseRuleService) Delete(ctx context.Context, id, actorID string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "rule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rule")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete rule")
	}

	s.audit(ctx, actorID, models.AuditActionRuleDelete, id, nil)
	return nil
}

func (s *ResponseRuleService) audit(ctx context.Context, actorID, action, ruleID string, payload interface{}) {
	if s.auditor == nil {
		return
	}
	var raw []byte
	if payload != nil {
		raw, _ = json.Marshal(payload)
	}
	log := &models.AuditLog{
		Action:     action,
		Resource:   "response_rules",
		ResourceID: &ruleID,
		NewValues:  raw,
	}
	if actorID != "" {
		log.UserID = &actorID
	}
	if err := s.auditor.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record rule audit log", zap.Error(err))
	}
}
