package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"runboard/internal/registry"
)

func TestHealthz(t *testing.T) {
	reg := registry.New(registry.Options{})
	h := newTestHandlers(t, reg, &mockRunner{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()

	h.Healthz(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name           string
		archive        ArchiveStore
		expectedStatus int
	}{
		{
			name:           "Ready Without Archive",
			archive:        nil,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Ready With Archive",
			archive:        &mockArchive{},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Archive Unavailable",
			archive:        &mockArchive{pingErr: errors.New("db closed")},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := registry.New(registry.Options{})
			h := newTestHandlers(t, reg, &mockRunner{}, tt.archive)

			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			rr := httptest.NewRecorder()

			h.Readyz(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("got status %d, want %d", rr.Code, tt.expectedStatus)
			}
		})
	}
}
