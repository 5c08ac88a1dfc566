package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/sakif/datavault/internal/apperror"
	"github.com/sakif/datavault/internal/model"
)

// =========================================================================
// MOCK RECORD REPOSITORY
// =========================================================================

type mockRecordRepo struct {
	records map[string]*model.Record
	nextID  int
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{records: make(map[string]*model.Record)}
}

func (m *mockRecordRepo) Create(_ context.Context, rec *model.Record) error {
	if _, ok := m.records[rec.Key]; ok {
		return apperror.Validation(apperror.CodeKeyExists, "key exists")
	}
	m.nextID++
	rec.ID = fmt.Sprintf("mock-%d", m.nextID)
	stored := *rec
	m.records[rec.Key] = &stored
	return nil
}

func (m *mockRecordRepo) GetByKey(_ context.Context, key string) (*model.Record, error) {
	rec, ok := m.records[key]
	if !ok {
		return nil, apperror.NotFound(apperror.CodeKeyNotFound, "not found")
	}
	result := *rec
	return &result, nil
}

func (m *mockRecordRepo) UpdateValue(_ context.Context, key, value string) error {
	rec, ok := m.records[key]
	if !ok {
		return apperror.NotFound(apperror.CodeKeyNotFound, "not found")
	}
	rec.Value = value
	return nil
}

func (m *mockRecordRepo) Delete(_ context.Context, key string) error {
	if _, ok := m.records[key]; !ok {
		return apperror.NotFound(apperror.CodeKeyNotFound, "not found")
	}
	delete(m.records, key)
	return nil
}

func newTestRecordService(t *testing.T) (*RecordService, *mockRecordRepo) {
	t.Helper()
	repo := newMockRecordRepo()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewRecordService(repo, logger), repo
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error = %v, want *AppError with code %s", err, code)
	}
	if appErr.Code != code {
		t.Errorf("code = %q, want %q", appErr.Code, code)
	}
}

// =========================================================================
// STORE TESTS
// =========================================================================

func TestStore_Success(t *testing.T) {
	svc, repo := newTestRecordService(t)

	if err := svc.Store(context.Background(), "k1", "v1"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if repo.records["k1"] == nil {
		t.Fatal("Store() did not persist the record")
	}
	if repo.records["k1"].Value != "v1" {
		t.Errorf("Value = %q, want v1", repo.records["k1"].Value)
	}
}

func TestStore_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		wantCode string
	}{
		{"empty key", "", "v1", apperror.CodeInvalidKey},
		{"whitespace key", "   ", "v1", apperror.CodeInvalidKey},
		{"overlong key", strings.Repeat("k", 101), "v1", apperror.CodeInvalidKey},
		{"empty value", "k1", "", apperror.CodeInvalidValue},
		{"whitespace value", "k1", " \t ", apperror.CodeInvalidValue},
		{"overlong value", "k1", strings.Repeat("v", 101), apperror.CodeInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestRecordService(t)

			err := svc.Store(context.Background(), tt.key, tt.value)
			wantCode(t, err, tt.wantCode)

			// Validation failures must not reach the store.
			if len(repo.records) != 0 {
				t.Error("invalid input reached the repository")
			}
		})
	}
}

func TestStore_KeyExists(t *testing.T) {
	svc, repo := newTestRecordService(t)

	if err := svc.Store(context.Background(), "k1", "v1"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	err := svc.Store(context.Background(), "k1", "v2")
	wantCode(t, err, apperror.CodeKeyExists)

	// Idempotent failure: the original value is untouched.
	if repo.records["k1"].Value != "v1" {
		t.Errorf("Value = %q after failed duplicate store, want v1", repo.records["k1"].Value)
	}
}

// =========================================================================
// GET / UPDATE / DELETE TESTS
// =========================================================================

func TestGet_RoundTrip(t *testing.T) {
	svc, _ := newTestRecordService(t)

	if err := svc.Store(context.Background(), "k1", "v1"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	rec, err := svc.Get(context.Background(), "k1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.Key != "k1" || rec.Value != "v1" {
		t.Errorf("got {%q,%q}, want {k1,v1}", rec.Key, rec.Value)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newTestRecordService(t)

	_, err := svc.Get(context.Background(), "missing")
	wantCode(t, err, apperror.CodeKeyNotFound)
}

func TestUpdate_Success(t *testing.T) {
	svc, repo := newTestRecordService(t)

	if err := svc.Store(context.Background(), "k1", "v1"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := svc.Update(context.Background(), "k1", "v2"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if repo.records["k1"].Value != "v2" {
		t.Errorf("Value = %q, want v2", repo.records["k1"].Value)
	}
}

func TestUpdate_AbsentKey(t *testing.T) {
	svc, repo := newTestRecordService(t)

	err := svc.Update(context.Background(), "ghost", "v1")
	wantCode(t, err, apperror.CodeKeyNotFound)

	if _, ok := repo.records["ghost"]; ok {
		t.Error("Update() on an absent key created it")
	}
}

func TestUpdate_InvalidValue(t *testing.T) {
	svc, _ := newTestRecordService(t)

	if err := svc.Store(context.Background(), "k1", "v1"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	err := svc.Update(context.Background(), "k1", "  ")
	wantCode(t, err, apperror.CodeInvalidValue)
}

func TestDelete_ThenGetFails(t *testing.T) {
	svc, _ := newTestRecordService(t)

	if err := svc.Store(context.Background(), "k1", "v1"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := svc.Delete(context.Background(), "k1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := svc.Get(context.Background(), "k1")
	wantCode(t, err, apperror.CodeKeyNotFound)

	// Second delete: idempotent failure.
	err = svc.Delete(context.Background(), "k1")
	wantCode(t, err, apperror.CodeKeyNotFound)
}
