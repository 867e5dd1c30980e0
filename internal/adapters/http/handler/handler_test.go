package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Kalpa111334/qr-with-dutch/internal/core/attendance"
	"github.com/Kalpa111334/qr-with-dutch/internal/core/cooldown"
	"github.com/Kalpa111334/qr-with-dutch/internal/core/employee"
	"github.com/Kalpa111334/qr-with-dutch/internal/core/scan"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeProcessor struct {
	result *scan.Result
	err    error
}

func (f *fakeProcessor) Process(_ context.Context, _, _ string) (*scan.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeSequencer struct {
	state   attendance.State
	next    attendance.Action
	nextOK  bool
	summary *attendance.DailySummary
	err     error
}

func (f *fakeSequencer) RecordAttendance(_ context.Context, _ attendance.RecordAttendanceInput) (*attendance.Result, error) {
	return nil, f.err
}

func (f *fakeSequencer) GetCurrentState(_ context.Context, _ string) (attendance.State, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.state, nil
}

func (f *fakeSequencer) GetNextAction(_ context.Context, _ string) (attendance.Action, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	return f.next, f.nextOK, nil
}

func (f *fakeSequencer) GetDailyRecord(_ context.Context, _ string) (*attendance.DailySummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func newTestRouter(proc ScanProcessor, seq attendance.UseCase, registry *cooldown.Registry) *gin.Engine {
	if registry == nil {
		registry = cooldown.NewRegistry(&stubClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}, 0, 0)
	}
	return NewRouter(NewScanHandler(proc), NewAttendanceHandler(seq), NewCooldownHandler(registry))
}

func TestScanHandler_Success(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 3, 10, 9, 5, 0, 0, time.UTC)
	proc := &fakeProcessor{result: &scan.Result{
		ScanID:   "scan-1",
		DeviceID: "kiosk-1",
		Result: &attendance.Result{
			Action:       attendance.ActionFirstCheckIn,
			EmployeeID:   "emp-1",
			EmployeeName: "Hansika Perera",
			Timestamp:    ts,
			CheckInTime:  &ts,
			Sequence:     1,
			Status:       attendance.StatusLate,
			MinutesLate:  5,
		},
	}}
	router := newTestRouter(proc, &fakeSequencer{}, nil)

	body := `{"device_id":"kiosk-1","employee_id":"emp-1"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}

	var resp scanResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Action != "first_check_in" || resp.Sequence != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.MinutesLate != 5 || resp.Status != "late" {
		t.Errorf("unexpected lateness fields: %+v", resp)
	}
}

func TestScanHandler_MissingBody(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeProcessor{}, &fakeSequencer{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", strings.NewReader(`{"device_id":"kiosk-1"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestScanHandler_ErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"employee not found", employee.ErrEmployeeNotFound, http.StatusNotFound, "invalid_employee"},
		{"inactive employee", employee.ErrEmployeeInactive, http.StatusForbidden, "inactive_employee"},
		{"max reached", attendance.ErrMaxSequenceReached, http.StatusConflict, "max_reached"},
		{"no active roster", attendance.ErrNoActiveRoster, http.StatusConflict, "no_active_roster"},
		{"transition failed", attendance.ErrTransitionFailed, http.StatusInternalServerError, "transition_failed"},
		{"debounced", scan.ErrScanDebounced, http.StatusTooManyRequests, "scan_debounced"},
		{"in flight", scan.ErrScanInFlight, http.StatusTooManyRequests, "scan_in_flight"},
		{"cooldown", fmt.Errorf("%w: first session check-out locked for another 2m 58s", scan.ErrCooldownActive), http.StatusTooManyRequests, "cooldown_active"},
		{"invalid device", scan.ErrInvalidDevice, http.StatusBadRequest, "invalid_device"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router := newTestRouter(&fakeProcessor{err: tc.err}, &fakeSequencer{}, nil)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", strings.NewReader(`{"device_id":"kiosk-1","employee_id":"emp-1"}`))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, w.Code)
			}

			var resp errorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if resp.Error != tc.wantKind {
				t.Errorf("expected error kind %q, got %q", tc.wantKind, resp.Error)
			}
		})
	}
}

func TestAttendanceHandler_GetState(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeProcessor{}, &fakeSequencer{state: attendance.StateFirstCheckedIn}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/emp-1/state", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}

	var resp stateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.State != "first_checked_in" {
		t.Errorf("unexpected state: %s", resp.State)
	}
}

func TestAttendanceHandler_GetNextAction_Completed(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeProcessor{}, &fakeSequencer{next: "", nextOK: false}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/emp-1/next-action", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}

	var resp nextActionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Completed || resp.NextAction != "" {
		t.Errorf("expected completed day, got %+v", resp)
	}
}

func TestAttendanceHandler_GetToday(t *testing.T) {
	t.Parallel()

	in := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	seq := &fakeSequencer{summary: &attendance.DailySummary{
		Record: &attendance.Record{
			ID:               "rec-1",
			RecordDate:       time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			FirstCheckInTime: &in,
			Status:           attendance.StatusPresent,
		},
		State:          attendance.StateFirstCheckedIn,
		WorkingMinutes: 90,
		WorkingLabel:   "1h 30m",
	}}
	router := newTestRouter(&fakeProcessor{}, seq, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/emp-1/today", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}

	var resp dailySummaryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.WorkingMinutes != 90 || resp.WorkingLabel != "1h 30m" {
		t.Errorf("unexpected summary: %+v", resp)
	}
	if resp.Record == nil || resp.Record.ID != "rec-1" {
		t.Errorf("expected record in summary, got %+v", resp.Record)
	}
}

func TestCooldownHandler_GetAndCancel(t *testing.T) {
	t.Parallel()

	clock := &stubClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	registry := cooldown.NewRegistry(clock, 0, 0)
	registry.ForDevice("kiosk-1").Start(cooldown.TypeFirstSession)

	router := newTestRouter(&fakeProcessor{}, &fakeSequencer{}, registry)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices/kiosk-1/cooldown", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}

	var resp cooldownResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Active || resp.Type != "first_session" {
		t.Errorf("expected active first_session cooldown, got %+v", resp)
	}
	if resp.RemainingSeconds != 180 {
		t.Errorf("expected 180 seconds remaining, got %d", resp.RemainingSeconds)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/devices/kiosk-1/cooldown", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/devices/kiosk-1/cooldown", nil)
	router.ServeHTTP(w, req)

	var after cooldownResponse
	if err := json.Unmarshal(w.Body.Bytes(), &after); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if after.Active {
		t.Error("expected cooldown to be cancelled")
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeProcessor{}, &fakeSequencer{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
}
