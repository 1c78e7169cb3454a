package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/smart-tuition/internal/models"
	"github.com/noah-isme/smart-tuition/internal/repository"
	appErrors "github.com/noah-isme/smart-tuition/pkg/errors"
)

type rawDocuments interface {
	ReadRaw(ctx context.Context, key string) (string, bool, error)
	WriteRaw(ctx context.Context, key, value string) error
}

type ledgerReloader interface {
	WithWriteLock(ctx context.Context, fn func(ctx context.Context) error) error
}

// envelopeSections pairs envelope fields with their storage keys and the value
// used when the key was never written.
var envelopeSections = []struct {
	field    string
	key      string
	fallback string
}{
	{"students", repository.KeyStudents, "[]"},
	{"payments", repository.KeyPayments, "[]"},
	{"bankConfig", repository.KeyBankConfig, "null"},
	{"profiles", repository.KeyProfiles, "[]"},
}

// RestoreResult summarizes an applied restore.
type RestoreResult struct {
	Students       int      `json:"students"`
	KeysWritten    []string `json:"keysWritten"`
	ReloadRequired bool     `json:"reloadRequired"`
}

// BackupService serializes and restores the whole ledger envelope.
type BackupService struct {
	docs    rawDocuments
	ledger  ledgerReloader
	version string
	logger  *zap.Logger
	now     func() time.Time
}

// NewBackupService constructs the backup service.
func NewBackupService(docs rawDocuments, ledger ledgerReloader, version string, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if version == "" {
		version = "1.0"
	}
	return &BackupService{docs: docs, ledger: ledger, version: version, logger: logger, now: time.Now}
}

// Serialize gathers the four ledger keys into an envelope. Missing or
// unreadable keys fall back to empty values instead of failing.
func (s *BackupService) Serialize(ctx context.Context) ([]byte, error) {
	env := models.BackupEnvelope{
		Version:   s.version,
		Timestamp: s.now().UTC().Format("2006-01-02T15:04:05.000Z"),
	}
	sections := map[string]*json.RawMessage{
		"students":   &env.Students,
		"payments":   &env.Payments,
		"bankConfig": &env.BankConfig,
		"profiles":   &env.Profiles,
	}
	for _, sec := range envelopeSections {
		raw, ok, err := s.docs.ReadRaw(ctx, sec.key)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read "+sec.field)
		}
		value := sec.fallback
		if ok && json.Valid([]byte(raw)) {
			value = raw
		} else if ok {
			s.logger.Warn("stored value is not valid json, exporting default", zap.String("key", sec.key))
		}
		*sections[sec.field] = json.RawMessage(value)
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode backup")
	}
	return payload, nil
}

// ValidateEnvelope parses data and checks the one gating rule: a students
// array must be present. It returns the top-level sections.
func ValidateEnvelope(data []byte) (map[string]json.RawMessage, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, appErrors.CloneWrap(appErrors.ErrInvalidBackup, err, "backup is not a JSON object")
	}
	students, ok := top["students"]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidBackup, "backup has no students list")
	}
	trimmed := bytes.TrimSpace(students)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, appErrors.Clone(appErrors.ErrInvalidBackup, "backup students field is not a list")
	}
	var list []models.Student
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, appErrors.CloneWrap(appErrors.ErrInvalidBackup, err, "backup students list has malformed records")
	}
	return top, nil
}

// Restore validates data and, once confirmed, overwrites every key present
// in the envelope. Absent keys are left untouched. Nothing is written when
// validation fails or confirmation is missing.
func (s *BackupService) Restore(ctx context.Context, data []byte, confirmed bool) (*RestoreResult, error) {
	top, err := ValidateEnvelope(data)
	if err != nil {
		return nil, err
	}
	var students []json.RawMessage
	_ = json.Unmarshal(top["students"], &students)
	if !confirmed {
		return nil, appErrors.Clone(appErrors.ErrConfirmationRequired,
			fmt.Sprintf("restoring overwrites local data with %d student records; repeat with confirm=true", len(students)))
	}

	result := &RestoreResult{Students: len(students), KeysWritten: []string{}}
	write := func(ctx context.Context) error {
		for _, sec := range envelopeSections {
			raw, present := top[sec.field]
			if !present {
				continue
			}
			if err := s.docs.WriteRaw(ctx, sec.key, string(raw)); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write "+sec.field)
			}
			result.KeysWritten = append(result.KeysWritten, sec.key)
		}
		return nil
	}

	if s.ledger == nil {
		if err := write(ctx); err != nil {
			return nil, err
		}
	} else {
		var writeErr error
		err := s.ledger.WithWriteLock(ctx, func(ctx context.Context) error {
			writeErr = write(ctx)
			return writeErr
		})
		if writeErr != nil {
			return nil, writeErr
		}
		if err != nil {
			result.ReloadRequired = true
			s.logger.Error("ledger reload after restore failed", zap.Error(err))
		}
	}
	s.logger.Info("backup restored", zap.Int("students", result.Students), zap.Strings("keys", result.KeysWritten))
	return result, nil
}

// Filename is the download name for a backup taken now.
func (s *BackupService) Filename() string {
	return fmt.Sprintf("SmartTuition_Backup_%s.json", s.now().Format("2006-01-02"))
}
