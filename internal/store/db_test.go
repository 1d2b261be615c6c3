package store

import (
	"net/http"
	"testing"

	"gorm.io/gorm"

	"tailorbase/internal/errors"
)

func TestGormConfigTranslatesDriverErrors(t *testing.T) {
	cfg := gormConfig()
	if !cfg.TranslateError {
		t.Fatal("TranslateError must be enabled so unique violations surface as gorm.ErrDuplicatedKey")
	}

	// With translation on, a unique violation reaches translateError as the
	// gorm sentinel and comes out as a conflict rather than a storage error.
	got := translateError(gorm.ErrDuplicatedKey, "user")
	if status := errors.HTTPStatus(got); status != http.StatusConflict {
		t.Errorf("duplicate maps to HTTP %d, want %d", status, http.StatusConflict)
	}
}
