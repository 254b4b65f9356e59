package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-intake/internal/db"
	"github.com/sells-group/lead-intake/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: func() {}}
}

// Pool returns the underlying database pool for subsystems that need direct
// query access (e.g., bulk import).
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS intake_batches (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	format       TEXT NOT NULL,
	confidence   INTEGER NOT NULL DEFAULT 0,
	record_count INTEGER NOT NULL DEFAULT 0,
	warnings     JSONB,
	errors       JSONB,
	metadata     JSONB,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS leads (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	batch_id          TEXT NOT NULL REFERENCES intake_batches(id),
	name              TEXT NOT NULL,
	email             TEXT NOT NULL,
	phone             TEXT NOT NULL,
	service_address   TEXT NOT NULL,
	installation_date TEXT NOT NULL,
	installation_time TEXT NOT NULL,
	is_referral       BOOLEAN NOT NULL DEFAULT false,
	referral_source   TEXT,
	lead_size         TEXT NOT NULL,
	order_number      TEXT,
	notes             TEXT,
	confidence        INTEGER NOT NULL DEFAULT 0,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_leads_batch_id ON leads(batch_id);
CREATE INDEX IF NOT EXISTS idx_leads_email ON leads(email);
CREATE INDEX IF NOT EXISTS idx_leads_lead_size ON leads(lead_size);
CREATE INDEX IF NOT EXISTS idx_batches_created_at ON intake_batches(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.closeFn()
	return nil
}

// leadInsertColumns is the COPY column order used by SaveBatch.
var leadInsertColumns = []string{
	"id", "batch_id", "name", "email", "phone", "service_address",
	"installation_date", "installation_time", "is_referral",
	"referral_source", "lead_size", "order_number", "notes",
	"confidence", "created_at",
}

func (s *PostgresStore) SaveBatch(ctx context.Context, result *model.ParseResult) (*model.IntakeBatch, error) {
	batch, warnJSON, errJSON, metaJSON, err := newBatch(result)
	if err != nil {
		return nil, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO intake_batches (id, format, confidence, record_count, warnings, errors, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		batch.ID, string(batch.Format), batch.Confidence, batch.RecordCount,
		warnJSON, errJSON, metaJSON, batch.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert batch")
	}

	rows := make([][]any, 0, len(result.Records))
	for i := range result.Records {
		rec := &result.Records[i]
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		rows = append(rows, []any{
			rec.ID, batch.ID, rec.Name, rec.Email, rec.Phone, rec.ServiceAddress,
			rec.InstallationDate, rec.InstallationTime, rec.IsReferral,
			rec.ReferralSource, string(rec.LeadSize), rec.OrderNumber, rec.Notes,
			rec.Confidence, batch.CreatedAt,
		})
	}
	if _, err := db.CopyFrom(ctx, s.pool, "leads", leadInsertColumns, rows); err != nil {
		return nil, err
	}

	return batch, nil
}

// leadUpdateColumns are refreshed when an upsert hits an existing email.
// The original lead id survives so external references stay valid.
var leadUpdateColumns = []string{
	"batch_id", "name", "phone", "service_address",
	"installation_date", "installation_time", "is_referral",
	"referral_source", "lead_size", "order_number", "notes",
	"confidence", "created_at",
}

// UpsertLeads saves a batch like SaveBatch but keys leads on email, so
// re-importing a weekly export refreshes existing customers instead of
// duplicating them. Requires the unique email index from EnsureEmailUnique.
// Records sharing an email within the batch collapse to the last one.
func (s *PostgresStore) UpsertLeads(ctx context.Context, result *model.ParseResult) (*model.IntakeBatch, error) {
	batch, warnJSON, errJSON, metaJSON, err := newBatch(result)
	if err != nil {
		return nil, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO intake_batches (id, format, confidence, record_count, warnings, errors, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		batch.ID, string(batch.Format), batch.Confidence, batch.RecordCount,
		warnJSON, errJSON, metaJSON, batch.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert batch")
	}

	byEmail := make(map[string]int, len(result.Records))
	var rows [][]any
	for i := range result.Records {
		rec := &result.Records[i]
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		row := []any{
			rec.ID, batch.ID, rec.Name, rec.Email, rec.Phone, rec.ServiceAddress,
			rec.InstallationDate, rec.InstallationTime, rec.IsReferral,
			rec.ReferralSource, string(rec.LeadSize), rec.OrderNumber, rec.Notes,
			rec.Confidence, batch.CreatedAt,
		}
		if j, seen := byEmail[rec.Email]; seen {
			rows[j] = row
			continue
		}
		byEmail[rec.Email] = len(rows)
		rows = append(rows, row)
	}

	if _, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "leads",
		Columns:      leadInsertColumns,
		ConflictKeys: []string{"email"},
		UpdateCols:   leadUpdateColumns,
	}, rows); err != nil {
		return nil, err
	}

	return batch, nil
}

// EnsureEmailUnique creates the unique email index UpsertLeads depends on.
// Fails if the table already holds duplicate emails.
func (s *PostgresStore) EnsureEmailUnique(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `CREATE UNIQUE INDEX IF NOT EXISTS uq_leads_email ON leads(email)`)
	return eris.Wrap(err, "postgres: create unique email index")
}

func (s *PostgresStore) GetBatch(ctx context.Context, batchID string) (*model.IntakeBatch, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, format, confidence, record_count, warnings, errors, metadata, created_at
		 FROM intake_batches WHERE id = $1`,
		batchID,
	)
	return scanBatch(row)
}

func (s *PostgresStore) ListBatches(ctx context.Context, limit int) ([]model.IntakeBatch, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, format, confidence, record_count, warnings, errors, metadata, created_at
		 FROM intake_batches ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list batches")
	}
	defer rows.Close()

	var batches []model.IntakeBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, *b)
	}
	return batches, eris.Wrap(rows.Err(), "postgres: list batches iterate")
}

func (s *PostgresStore) GetLead(ctx context.Context, leadID string) (*model.CustomerRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = $1`, leadID)
	return scanLead(row)
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.CustomerRecord, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	var args []any

	if filter.Email != "" {
		args = append(args, filter.Email)
		query += fmt.Sprintf(` AND email = $%d`, len(args))
	}
	if filter.LeadSize != "" {
		args = append(args, string(filter.LeadSize))
		query += fmt.Sprintf(` AND lead_size = $%d`, len(args))
	}
	if filter.MinConfidence > 0 {
		args = append(args, filter.MinConfidence)
		query += fmt.Sprintf(` AND confidence >= $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.CustomerRecord
	for rows.Next() {
		r, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *r)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func (s *PostgresStore) DeleteLead(ctx context.Context, leadID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, leadID)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete lead %s", leadID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("lead not found: %s", leadID)
	}
	return nil
}
