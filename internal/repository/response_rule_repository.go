package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
)

// ResponseRuleRepository provides database access for automated response rules.
type ResponseRuleRepository struct {
	db *sqlx.DB
}

// NewResponseRuleRepository creates a new instance of ResponseRuleRepository.
func NewResponseRuleRepository(db *sqlx.DB) *ResponseRuleRepository {
	return &ResponseRuleRepository{db: db}
}

const ruleColumns = `id, name, description, status, conditions, actions, trigger_count, last_triggered, created_by, created_at, updated_at`

// List returns response rules based on filters with total count.
func (r *ResponseRuleRepository) List(ctx context.Context, filter models.RuleFilter) ([]models.ResponseRule, int, error) {
	baseQuery := `FROM response_rules WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(description) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := models.NormalizePageQuery(filter.Page, filter.PageSize)
	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", ruleColumns, baseQuery, page.Limit, page.Offset())

	var rules []models.ResponseRule
	if err := r.db.SelectContext(ctx, &rules, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list response rules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count response rules: %w", err)
	}

	return rules, total, nil
}

// ListActive returns every rule currently in the active status.
func (r *ResponseRuleRepository) ListActive(ctx context.Context) ([]models.ResponseRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM response_rules WHERE status = $1 ORDER BY created_at ASC`, ruleColumns)
	var rules []models.ResponseRule
	if err := r.db.SelectContext(ctx, &rules, query, models.RuleStatusActive); err != nil {
		return nil, fmt.Errorf("list active rules: %w", err)
	}
	return rules, nil
}

// FindByID returns a response rule by identifier.
func (r *ResponseRuleRepository) FindByID(ctx context.Context, id string) (*models.ResponseRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM response_rules WHERE id = $1 LIMIT 1`, ruleColumns)
	var rule models.ResponseRule
	if err := r.db.GetContext(ctx, &rule, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find response rule: %w", err)
	}
	return &rule, nil
}

// Create inserts a new response rule.
func (r *ResponseRuleRepository) Create(ctx context.Context, rule *models.ResponseRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now
	if rule.Status == "" {
		rule.Status = models.RuleStatusInactive
	}

	const query = `INSERT INTO response_rules (id, name, description, status, conditions, actions, trigger_count, created_by, created_at, updated_at)
		VALUES (:id, :name, :description, :status, :conditions, :actions, :trigger_count, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("create response rule: %w", err)
	}
	return nil
}

// Update updates mutable fields of a response rule.
func (r *ResponseRuleRepository) Update(ctx context.Context, rule *models.ResponseRule) error {
	rule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE response_rules SET name = :name, description = :description, conditions = :conditions, actions = :actions, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("update response rule: %w", err)
	}
	return nil
}

// UpdateStatus sets the activation status of a rule.
func (r *ResponseRuleRepository) UpdateStatus(ctx context.Context, id string, status models.RuleStatus) error {
	const query = `UPDATE response_rules SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update rule status: %w", err)
	}
	return nil
}

// RecordTrigger increments the trigger count and stamps last_triggered.
func (r *ResponseRuleRepository) RecordTrigger(ctx context.Context, id string, triggeredAt time.Time) error {
	const query = `UPDATE response_rules SET trigger_count = trigger_count + 1, last_triggered = $2, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, triggeredAt); err != nil {
		return fmt.Errorf("record rule trigger: %w", err)
	}
	return nil
}

// Delete removes a response rule.
func (r *ResponseRuleRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM response_rules WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete response rule: %w", err)
	}
	return nil
}
