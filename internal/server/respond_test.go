package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tailorbase/internal/config"
	"tailorbase/internal/errors"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation error",
			err:        errors.NewValidationError(errors.ErrCodeInvalidUUID, "userId must be a valid UUID", nil),
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.ErrCodeInvalidUUID,
		},
		{
			name:       "not found",
			err:        errors.NewNotFoundError(errors.ErrCodeNotFound, "resume not found", nil),
			wantStatus: http.StatusNotFound,
			wantCode:   errors.ErrCodeNotFound,
		},
		{
			name:       "conflict",
			err:        errors.NewConflictError(errors.ErrCodeSessionCompleted, "session done", nil),
			wantStatus: http.StatusConflict,
			wantCode:   errors.ErrCodeSessionCompleted,
		},
		{
			name:       "rate limited",
			err:        errors.NewRateLimitError(errors.ErrCodeRateLimited, "slow down", nil),
			wantStatus: http.StatusTooManyRequests,
			wantCode:   errors.ErrCodeRateLimited,
		},
		{
			name:       "ai quota exhausted",
			err:        errors.NewAIError(errors.ErrCodeAIQuotaExceeded, "quota exhausted", nil),
			wantStatus: http.StatusTooManyRequests,
			wantCode:   errors.ErrCodeAIQuotaExceeded,
		},
		{
			name:       "plain error becomes 500",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	s := testServer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.writeError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			resp := decodeEnvelope(t, rec)
			if resp.Success {
				t.Error("expected failure envelope")
			}
			if tt.wantCode != "" && (resp.Error == nil || resp.Error.Code != tt.wantCode) {
				t.Errorf("error code = %v, want %s", resp.Error, tt.wantCode)
			}
		})
	}
}

func TestWriteDataEnvelope(t *testing.T) {
	s := testServer(nil)
	rec := httptest.NewRecorder()
	s.writeData(rec, http.StatusCreated, map[string]string{"hello": "world"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if !resp.Success {
		t.Error("expected success envelope")
	}
	if resp.Error != nil {
		t.Errorf("unexpected error in envelope: %v", resp.Error)
	}
}

func TestParseUUID(t *testing.T) {
	if _, err := parseUUID("userId", "b7f7d18e-3f1a-4f55-9147-8cdd7f0c3aa2"); err != nil {
		t.Errorf("valid UUID rejected: %v", err)
	}
	if _, err := parseUUID("userId", " b7f7d18e-3f1a-4f55-9147-8cdd7f0c3aa2 "); err != nil {
		t.Errorf("whitespace-padded UUID rejected: %v", err)
	}
	for _, invalid := range []string{"", "not-a-uuid", "12345"} {
		_, err := parseUUID("userId", invalid)
		if err == nil {
			t.Errorf("parseUUID(%q) accepted", invalid)
			continue
		}
		if errors.ErrorCode(err) != errors.ErrCodeInvalidUUID {
			t.Errorf("parseUUID(%q) code = %s, want %s", invalid, errors.ErrorCode(err), errors.ErrCodeInvalidUUID)
		}
	}
}

func TestTailorHandlerRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{
			name:     "invalid json",
			body:     "{not json",
			wantCode: errors.ErrCodeInvalidRequest,
		},
		{
			name:     "missing user id",
			body:     `{"resumeId":"b7f7d18e-3f1a-4f55-9147-8cdd7f0c3aa2"}`,
			wantCode: errors.ErrCodeInvalidUUID,
		},
		{
			name:     "malformed resume id",
			body:     `{"userId":"b7f7d18e-3f1a-4f55-9147-8cdd7f0c3aa2","resumeId":"nope"}`,
			wantCode: errors.ErrCodeInvalidUUID,
		},
	}

	s := testServer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/modules/tailor", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			s.tailorHandler(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			resp := decodeEnvelope(t, rec)
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("error code = %v, want %s", resp.Error, tt.wantCode)
			}
		})
	}
}

func TestValidateProfileURL(t *testing.T) {
	valid := []string{
		"https://www.linkedin.com/in/someone",
		"http://example.com/profile",
	}
	for _, u := range valid {
		if err := validateProfileURL(u); err != nil {
			t.Errorf("validateProfileURL(%q) = %v, want nil", u, err)
		}
	}

	invalid := []string{"", "   ", "ftp://example.com/x", "not a url", "/relative/path"}
	for _, u := range invalid {
		if err := validateProfileURL(u); err == nil {
			t.Errorf("validateProfileURL(%q) accepted", u)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	if err := validateEmail("dev@example.com"); err != nil {
		t.Errorf("valid email rejected: %v", err)
	}
	for _, bad := range []string{"", "plainaddress", "two words@example.com"} {
		if err := validateEmail(bad); err == nil {
			t.Errorf("validateEmail(%q) accepted", bad)
		}
	}
}

func TestValidateApplicationStatus(t *testing.T) {
	for _, ok := range []string{"draft", "applied", "interview", "offer", "rejected"} {
		if err := validateApplicationStatus(ok); err != nil {
			t.Errorf("validateApplicationStatus(%q) = %v, want nil", ok, err)
		}
	}
	if err := validateApplicationStatus("ghosted"); err == nil {
		t.Error("unknown status accepted")
	}
}

func TestBoundField(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.MaxContentChars = 10
	s := testServer(cfg)

	if err := s.boundField("notes", "short"); err != nil {
		t.Errorf("short value rejected: %v", err)
	}
	err := s.boundField("notes", strings.Repeat("x", 11))
	if err == nil {
		t.Fatal("oversize value accepted")
	}
	if errors.ErrorCode(err) != errors.ErrCodeFieldTooLong {
		t.Errorf("code = %s, want %s", errors.ErrorCode(err), errors.ErrCodeFieldTooLong)
	}

	// Zero limit disables the check
	s2 := testServer(nil)
	if err := s2.boundField("notes", strings.Repeat("x", 100000)); err != nil {
		t.Errorf("unbounded field rejected: %v", err)
	}
}
