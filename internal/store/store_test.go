package store

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tailorbase/internal/errors"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"nil passes through", nil, 0},
		{"record not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"duplicated key", gorm.ErrDuplicatedKey, http.StatusConflict},
		{"other db error", stderrors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err, "user")
			if tt.err == nil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected an error")
			}
			if status := errors.HTTPStatus(got); status != tt.wantStatus {
				t.Errorf("HTTPStatus = %d, want %d", status, tt.wantStatus)
			}
			if !stderrors.Is(got, tt.err) {
				t.Error("translated error should wrap the cause")
			}
		})
	}
}

func TestBaseBeforeCreateAssignsID(t *testing.T) {
	var b Base
	if err := b.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate returned error: %v", err)
	}
	if b.ID == uuid.Nil {
		t.Error("expected a generated ID")
	}

	fixed := uuid.New()
	b2 := Base{ID: fixed}
	if err := b2.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate returned error: %v", err)
	}
	if b2.ID != fixed {
		t.Error("BeforeCreate should keep a caller-set ID")
	}
}
