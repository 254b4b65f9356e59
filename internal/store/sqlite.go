package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/lead-intake/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS intake_batches (
	id           TEXT PRIMARY KEY,
	format       TEXT NOT NULL,
	confidence   INTEGER NOT NULL DEFAULT 0,
	record_count INTEGER NOT NULL DEFAULT 0,
	warnings     TEXT,
	errors       TEXT,
	metadata     TEXT,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS leads (
	id                TEXT PRIMARY KEY,
	batch_id          TEXT NOT NULL REFERENCES intake_batches(id),
	name              TEXT NOT NULL,
	email             TEXT NOT NULL,
	phone             TEXT NOT NULL,
	service_address   TEXT NOT NULL,
	installation_date TEXT NOT NULL,
	installation_time TEXT NOT NULL,
	is_referral       INTEGER NOT NULL DEFAULT 0,
	referral_source   TEXT,
	lead_size         TEXT NOT NULL,
	order_number      TEXT,
	notes             TEXT,
	confidence        INTEGER NOT NULL DEFAULT 0,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_batch_id ON leads(batch_id);
CREATE INDEX IF NOT EXISTS idx_leads_email ON leads(email);
CREATE INDEX IF NOT EXISTS idx_leads_lead_size ON leads(lead_size);
CREATE INDEX IF NOT EXISTS idx_batches_created_at ON intake_batches(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveBatch(ctx context.Context, result *model.ParseResult) (*model.IntakeBatch, error) {
	batch, warnJSON, errJSON, metaJSON, err := newBatch(result)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO intake_batches (id, format, confidence, record_count, warnings, errors, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		batch.ID, string(batch.Format), batch.Confidence, batch.RecordCount,
		warnJSON, errJSON, metaJSON, batch.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert batch")
	}

	for i := range result.Records {
		rec := &result.Records[i]
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO leads (id, batch_id, name, email, phone, service_address,
			                    installation_date, installation_time, is_referral,
			                    referral_source, lead_size, order_number, notes,
			                    confidence, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, batch.ID, rec.Name, rec.Email, rec.Phone, rec.ServiceAddress,
			rec.InstallationDate, rec.InstallationTime, rec.IsReferral,
			rec.ReferralSource, string(rec.LeadSize), rec.OrderNumber, rec.Notes,
			rec.Confidence, batch.CreatedAt,
		)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert lead %s", rec.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit batch")
	}
	return batch, nil
}

func (s *SQLiteStore) GetBatch(ctx context.Context, batchID string) (*model.IntakeBatch, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, format, confidence, record_count, warnings, errors, metadata, created_at
		 FROM intake_batches WHERE id = ?`,
		batchID,
	)
	return scanBatch(row)
}

func (s *SQLiteStore) ListBatches(ctx context.Context, limit int) ([]model.IntakeBatch, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, format, confidence, record_count, warnings, errors, metadata, created_at
		 FROM intake_batches ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list batches")
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
	return batches, eris.Wrap(rows.Err(), "sqlite: list batches iterate")
}

const leadColumns = `id, name, email, phone, service_address, installation_date,
	installation_time, is_referral, referral_source, lead_size, order_number,
	notes, confidence`

func (s *SQLiteStore) GetLead(ctx context.Context, leadID string) (*model.CustomerRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = ?`, leadID)
	return scanLead(row)
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.CustomerRecord, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	var args []any

	if filter.Email != "" {
		query += ` AND email = ?`
		args = append(args, filter.Email)
	}
	if filter.LeadSize != "" {
		query += ` AND lead_size = ?`
		args = append(args, string(filter.LeadSize))
	}
	if filter.MinConfidence > 0 {
		query += ` AND confidence >= ?`
		args = append(args, filter.MinConfidence)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
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
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func (s *SQLiteStore) DeleteLead(ctx context.Context, leadID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, leadID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete lead %s", leadID)
	}
	return checkRowsAffected(res, "lead", leadID)
}

// helpers

// newBatch builds an IntakeBatch from a parse result and marshals its JSON
// side columns once for both backends.
func newBatch(result *model.ParseResult) (*model.IntakeBatch, string, string, string, error) {
	batch := &model.IntakeBatch{
		ID:          uuid.New().String(),
		Format:      result.FormatDetected,
		Confidence:  result.Confidence,
		RecordCount: len(result.Records),
		Warnings:    result.Warnings,
		Errors:      result.Errors,
		Metadata:    result.Metadata,
		CreatedAt:   time.Now().UTC(),
	}

	warnJSON, err := json.Marshal(batch.Warnings)
	if err != nil {
		return nil, "", "", "", eris.Wrap(err, "store: marshal warnings")
	}
	errJSON, err := json.Marshal(batch.Errors)
	if err != nil {
		return nil, "", "", "", eris.Wrap(err, "store: marshal errors")
	}
	metaJSON, err := json.Marshal(batch.Metadata)
	if err != nil {
		return nil, "", "", "", eris.Wrap(err, "store: marshal metadata")
	}
	return batch, string(warnJSON), string(errJSON), string(metaJSON), nil
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanBatch(row scannable) (*model.IntakeBatch, error) {
	var b model.IntakeBatch
	var warnJSON, errJSON, metaJSON sql.NullString

	err := row.Scan(&b.ID, &b.Format, &b.Confidence, &b.RecordCount,
		&warnJSON, &errJSON, &metaJSON, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.New("batch not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan batch")
	}

	if warnJSON.Valid && warnJSON.String != "" {
		if err := json.Unmarshal([]byte(warnJSON.String), &b.Warnings); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal warnings")
		}
	}
	if errJSON.Valid && errJSON.String != "" {
		if err := json.Unmarshal([]byte(errJSON.String), &b.Errors); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal errors")
		}
	}
	if metaJSON.Valid && metaJSON.String != "" {
		if err := json.Unmarshal([]byte(metaJSON.String), &b.Metadata); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal metadata")
		}
	}
	return &b, nil
}

func scanLead(row scannable) (*model.CustomerRecord, error) {
	var r model.CustomerRecord
	var referral, orderNum, notes sql.NullString
	var leadSize string

	err := row.Scan(&r.ID, &r.Name, &r.Email, &r.Phone, &r.ServiceAddress,
		&r.InstallationDate, &r.InstallationTime, &r.IsReferral,
		&referral, &leadSize, &orderNum, &notes, &r.Confidence)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.New("lead not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan lead")
	}

	r.ReferralSource = referral.String
	r.OrderNumber = orderNum.String
	r.Notes = notes.String
	r.LeadSize = model.LeadSize(leadSize)
	return &r, nil
}
