package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/xiaot623/gogo/marketplace/internal/domain"
)

// SQLiteStore implements Store using SQLite. The default DSN is an in-memory
// database, so contents live only as long as the process.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS agents (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			agent_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			version TEXT NOT NULL,
			author TEXT NOT NULL,
			contact_email TEXT,
			homepage_url TEXT,
			api_endpoint TEXT NOT NULL,
			capabilities TEXT NOT NULL,
			auth_type TEXT NOT NULL DEFAULT 'none',
			auth_details TEXT,
			pricing_model TEXT,
			pricing_details TEXT,
			tags TEXT,
			status TEXT NOT NULL DEFAULT 'active',
			created_at DATETIME NOT NULL,
			created_by TEXT NOT NULL,
			updated_at DATETIME,
			deleted_at DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_agents_live ON agents(deleted_at, seq)`,
		`CREATE TABLE IF NOT EXISTS executions (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			execution_id TEXT NOT NULL UNIQUE,
			agent_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			input TEXT,
			parameters TEXT,
			status TEXT NOT NULL,
			result TEXT,
			error TEXT,
			created_at DATETIME NOT NULL,
			completed_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_executions_agent ON executions(agent_id, seq)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const agentColumns = `agent_id, name, description, version, author, contact_email, homepage_url,
	api_endpoint, capabilities, auth_type, auth_details, pricing_model, pricing_details, tags,
	status, created_at, created_by, updated_at`

// CreateAgent creates a new agent.
func (s *SQLiteStore) CreateAgent(ctx context.Context, agent *domain.Agent) error {
	cols, err := encodeAgentSpec(agent.AgentSpec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO agents (`+agentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		agent.ID, agent.Name, agent.Description, agent.Version, agent.Author,
		nullString(agent.ContactEmail), nullString(agent.HomepageURL), agent.APIEndpoint,
		cols.capabilities, agent.AuthType, cols.authDetails, nullString(agent.PricingModel),
		cols.pricingDetails, cols.tags, agent.Status, agent.CreatedAt, agent.CreatedBy, nullTime(agent.UpdatedAt))
	return err
}

// GetAgent retrieves a live agent by ID.
func (s *SQLiteStore) GetAgent(ctx context.Context, agentID string) (*domain.Agent, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE agent_id = ? AND deleted_at IS NULL`, agentID)
	agent, err := scanAgent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return agent, nil
}

// ListAgents lists live agents in registration order.
func (s *SQLiteStore) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE deleted_at IS NULL ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	agents := []domain.Agent{}
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, *agent)
	}
	return agents, rows.Err()
}

// ReplaceAgent overwrites the descriptor and lifecycle fields of a live agent.
// id, created_at and created_by are not written.
func (s *SQLiteStore) ReplaceAgent(ctx context.Context, agent *domain.Agent) (bool, error) {
	cols, err := encodeAgentSpec(agent.AgentSpec)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE agents SET name = ?, description = ?, version = ?, author = ?, contact_email = ?,
			homepage_url = ?, api_endpoint = ?, capabilities = ?, auth_type = ?, auth_details = ?,
			pricing_model = ?, pricing_details = ?, tags = ?, status = ?, updated_at = ?
		WHERE agent_id = ? AND deleted_at IS NULL`,
		agent.Name, agent.Description, agent.Version, agent.Author, nullString(agent.ContactEmail),
		nullString(agent.HomepageURL), agent.APIEndpoint, cols.capabilities, agent.AuthType, cols.authDetails,
		nullString(agent.PricingModel), cols.pricingDetails, cols.tags, agent.Status, nullTime(agent.UpdatedAt),
		agent.ID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteAgent tombstones a live agent and returns it.
func (s *SQLiteStore) DeleteAgent(ctx context.Context, agentID string) (*domain.Agent, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE agent_id = ? AND deleted_at IS NULL`, agentID)
	agent, err := scanAgent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE agents SET deleted_at = ? WHERE agent_id = ?`, time.Now().UTC(), agentID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit delete: %w", err)
	}
	return agent, nil
}

// AgentKnown reports whether the id was ever registered.
func (s *SQLiteStore) AgentKnown(ctx context.Context, agentID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM agents WHERE agent_id = ?`, agentID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AppendExecution appends an execution record.
func (s *SQLiteStore) AppendExecution(ctx context.Context, record *domain.ExecutionRecord) error {
	input, err := encodeDocument(record.Input)
	if err != nil {
		return err
	}
	params, err := encodeDocument(record.Parameters)
	if err != nil {
		return err
	}
	result, err := encodeDocument(record.Result)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO executions (execution_id, agent_id, user_id, input, parameters, status, result, error, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.AgentID, record.UserID, input, params, record.Status, result,
		nullString(record.Error), record.CreatedAt, record.CompletedAt)
	return err
}

const executionColumns = `execution_id, agent_id, user_id, input, parameters, status, result, error, created_at, completed_at`

// ListExecutions lists an agent's records in submission order.
func (s *SQLiteStore) ListExecutions(ctx context.Context, agentID string) ([]domain.ExecutionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+executionColumns+` FROM executions WHERE agent_id = ? ORDER BY seq ASC`, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.ExecutionRecord{}
	for rows.Next() {
		record, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// GetExecution retrieves a record by agent and execution ID.
func (s *SQLiteStore) GetExecution(ctx context.Context, agentID, executionID string) (*domain.ExecutionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+executionColumns+` FROM executions WHERE agent_id = ? AND execution_id = ?`, agentID, executionID)
	record, err := scanExecution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

type encodedSpec struct {
	capabilities   string
	authDetails    sql.NullString
	pricingDetails sql.NullString
	tags           string
}

func encodeAgentSpec(spec domain.AgentSpec) (encodedSpec, error) {
	var out encodedSpec
	caps, err := json.Marshal(spec.Capabilities)
	if err != nil {
		return out, fmt.Errorf("failed to encode capabilities: %w", err)
	}
	tags := spec.Tags
	if tags == nil {
		tags = []string{}
	}
	tagBytes, err := json.Marshal(tags)
	if err != nil {
		return out, fmt.Errorf("failed to encode tags: %w", err)
	}
	if out.authDetails, err = encodeDocument(spec.AuthDetails); err != nil {
		return out, err
	}
	if out.pricingDetails, err = encodeDocument(spec.PricingDetails); err != nil {
		return out, err
	}
	out.capabilities = string(caps)
	out.tags = string(tagBytes)
	return out, nil
}

func scanAgent(row rowScanner) (*domain.Agent, error) {
	var agent domain.Agent
	var contactEmail, homepageURL, authDetails, pricingModel, pricingDetails, tags sql.NullString
	var capabilities string
	var updatedAt sql.NullTime
	err := row.Scan(&agent.ID, &agent.Name, &agent.Description, &agent.Version, &agent.Author,
		&contactEmail, &homepageURL, &agent.APIEndpoint, &capabilities, &agent.AuthType, &authDetails,
		&pricingModel, &pricingDetails, &tags, &agent.Status, &agent.CreatedAt, &agent.CreatedBy, &updatedAt)
	if err != nil {
		return nil, err
	}
	agent.ContactEmail = contactEmail.String
	agent.HomepageURL = homepageURL.String
	agent.PricingModel = pricingModel.String
	if err := json.Unmarshal([]byte(capabilities), &agent.Capabilities); err != nil {
		return nil, fmt.Errorf("failed to decode capabilities: %w", err)
	}
	if agent.AuthDetails, err = decodeDocument(authDetails); err != nil {
		return nil, err
	}
	if agent.PricingDetails, err = decodeDocument(pricingDetails); err != nil {
		return nil, err
	}
	agent.Tags = []string{}
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &agent.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		agent.UpdatedAt = &t
	}
	return &agent, nil
}

func scanExecution(row rowScanner) (*domain.ExecutionRecord, error) {
	var record domain.ExecutionRecord
	var input, params, result, errMsg sql.NullString
	err := row.Scan(&record.ID, &record.AgentID, &record.UserID, &input, &params, &record.Status,
		&result, &errMsg, &record.CreatedAt, &record.CompletedAt)
	if err != nil {
		return nil, err
	}
	if record.Input, err = decodeDocument(input); err != nil {
		return nil, err
	}
	if record.Parameters, err = decodeDocument(params); err != nil {
		return nil, err
	}
	if record.Result, err = decodeDocument(result); err != nil {
		return nil, err
	}
	record.Error = errMsg.String
	return &record, nil
}

func encodeDocument(doc domain.Document) (sql.NullString, error) {
	if doc == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode document: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeDocument(s sql.NullString) (domain.Document, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var doc domain.Document
	if err := json.Unmarshal([]byte(s.String), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
