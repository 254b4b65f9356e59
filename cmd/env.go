package main

import (
	"context"
	"io"
	"os"

	gosf "github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-intake/internal/ai"
	"github.com/sells-group/lead-intake/internal/security"
	"github.com/sells-group/lead-intake/internal/store"
	"github.com/sells-group/lead-intake/pkg/anthropic"
	"github.com/sells-group/lead-intake/pkg/salesforce"
)

// sharedAudit is the process-wide audit log; every gate call in this process
// lands here so the audit report covers the whole run.
var sharedAudit *security.AuditLog

func auditLog() *security.AuditLog {
	if sharedAudit == nil {
		sharedAudit = security.NewAuditLog(cfg.Security.AuditRetention())
	}
	return sharedAudit
}

// newGate builds the security validator from config, wired to the shared
// audit log.
func newGate() *security.Validator {
	return security.NewValidator(security.Config{
		MaxInputBytes:    cfg.Security.MaxInputBytes,
		MaxLineLength:    cfg.Security.MaxLineLength,
		ControlCharRatio: cfg.Security.ControlCharRatio,
	}, auditLog())
}

// newAIPipeline builds the model-backed pipeline, or ErrNotConfigured when no
// API key is present.
func newAIPipeline(gate *security.Validator) (*ai.Pipeline, error) {
	if cfg.Anthropic.Key == "" {
		return nil, ai.ErrNotConfigured
	}

	client := anthropic.NewClient(cfg.Anthropic.Key)
	cache := ai.NewResultCache(cfg.AI.CacheTTL())

	return ai.NewPipeline(client, gate, cache, ai.Config{
		Model:          cfg.Anthropic.HaikuModel,
		MaxTokens:      cfg.AI.MaxTokens,
		BatchSize:      cfg.AI.BatchSize,
		CostThreshold:  cfg.AI.CostThreshold,
		EnableFallback: cfg.AI.EnableFallback,
		EnableCaching:  cfg.AI.EnableCaching,
		RequestTimeout: cfg.AI.RequestTimeoutDuration(),
		BatchInterval:  cfg.AI.BatchInterval(),
	})
}

// openStore opens the configured lead store and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	var (
		s   store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		s, err = store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres", "":
		s, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// newSalesforce authenticates against Salesforce using the configured JWT
// credentials.
func newSalesforce() (salesforce.Client, error) {
	if cfg.Salesforce.ClientID == "" || cfg.Salesforce.Username == "" || cfg.Salesforce.KeyPath == "" {
		return nil, eris.New("salesforce export requires client_id, username, and key_path")
	}

	pem, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce key")
	}

	sf, err := gosf.Init(gosf.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pem),
	})
	if err != nil {
		return nil, eris.Wrap(err, "salesforce auth")
	}

	return salesforce.NewClient(sf, salesforce.WithRateLimit(5)), nil
}

// readInput returns the contents of path, or stdin when path is "-" or empty.
func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", eris.Wrap(err, "read stdin")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "read %s", path)
	}
	return string(data), nil
}
