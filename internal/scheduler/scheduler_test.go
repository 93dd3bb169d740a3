package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"BioSentinel/internal/collector"
	"BioSentinel/internal/model"
	"BioSentinel/internal/recorder"
	"BioSentinel/internal/roster"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	return m.Called(text).Error(0)
}

func (m *mockNotifier) SendPhotoWithRetry(ctx context.Context, png []byte, caption string, maxRetries int) error {
	return m.Called(png, caption).Error(0)
}

type fakeRenderer struct{ err error }

func (f fakeRenderer) Render(*model.Forecast) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png"), nil
}

type memRecorder struct {
	recorder.NoopRecorder
	forecasts  []*recorder.ForecastEvent
	deliveries []*recorder.DeliveryEvent
}

func (m *memRecorder) RecordForecast(evt *recorder.ForecastEvent) error {
	m.forecasts = append(m.forecasts, evt)
	return nil
}

func (m *memRecorder) RecordDelivery(evt *recorder.DeliveryEvent) error {
	m.deliveries = append(m.deliveries, evt)
	return nil
}

func (m *memRecorder) RecentForecasts(person string, limit int) ([]recorder.ForecastEvent, error) {
	var out []recorder.ForecastEvent
	for i := len(m.forecasts) - 1; i >= 0 && len(out) < limit; i-- {
		if m.forecasts[i].Person == person {
			out = append(out, *m.forecasts[i])
		}
	}
	return out, nil
}

func newTestScheduler(t *testing.T, n Notifier, rd Renderer) (*Scheduler, *memRecorder) {
	t.Helper()
	rm, err := roster.NewManager([]model.Person{
		{Name: "Scott", Birthdate: model.MustDate(1957, time.April, 11)},
	}, filepath.Join(t.TempDir(), "roster.json"))
	require.NoError(t, err)

	col := collector.NewCollector(rm, collector.Window{DaysBefore: 15, DaysAfter: 30, MaxDays: 3660})
	col.Now = func() time.Time { return time.Date(2025, time.June, 15, 7, 0, 0, 0, time.UTC) }

	rec := &memRecorder{}
	return NewScheduler(context.Background(), col, rm, rd, n, rec), rec
}

func TestDailyTask_SendsChartAndText(t *testing.T) {
	n := new(mockNotifier)
	n.On("SendPhotoWithRetry", []byte("png"), mock.AnythingOfType("string")).Return(nil)
	n.On("SendWithRetry", mock.MatchedBy(func(s string) bool { return len(s) > 0 })).Return(errors.New("down"))

	s, rec := newTestScheduler(t, n, fakeRenderer{})
	s.RunDailyNow()

	n.AssertNumberOfCalls(t, "SendPhotoWithRetry", 1)
	n.AssertNumberOfCalls(t, "SendWithRetry", 1)
	require.Len(t, rec.forecasts, 1)
	assert.Equal(t, "daily", rec.forecasts[0].Source)
	assert.Equal(t, "Scott", rec.forecasts[0].Person)
	require.NotNil(t, rec.forecasts[0].Today)
	assert.Equal(t, "2025-06-15", rec.forecasts[0].Today.Date.String())

	require.Len(t, rec.deliveries, 2)
	assert.True(t, rec.deliveries[0].OK)
	assert.False(t, rec.deliveries[1].OK)
	assert.Equal(t, "down", rec.deliveries[1].Error)
}

func TestDailyTask_RenderFailureStillSendsText(t *testing.T) {
	n := new(mockNotifier)
	n.On("SendWithRetry", mock.Anything).Return(nil)

	s, _ := newTestScheduler(t, n, fakeRenderer{err: errors.New("no font")})
	s.RunDailyNow()

	n.AssertNotCalled(t, "SendPhotoWithRetry", mock.Anything, mock.Anything)
	n.AssertNumberOfCalls(t, "SendWithRetry", 1)
}

func TestHandleCommand(t *testing.T) {
	s, rec := newTestScheduler(t, nil, fakeRenderer{})
	ctx := context.Background()

	tests := []struct {
		command  string
		contains string
	}{
		{"/today Scott", "Biorhythm</b> | Scott | 2025-06-15"},
		{"/today@BioBot scott", "Scott"},
		{"/today", "Usage: /today"},
		{"/today Nobody", "Unknown person"},
		{"/chart Scott 2025-01-05 2025-01-01", "End date must be after start date."},
		{"/chart Scott 31/01/2025", "Dates must look like"},
		{"/chart Scott 0001-01-01 9999-12-31", "too large"},
		{"/chart", "Usage: /chart"},
		{"/chart 2025-01-01", "Usage: /chart"},
		{"/add Ada 1815-12-10", "Saved Ada (1815-12-10)."},
		{"/add Scott 2000-01-01", "Preset people cannot be changed."},
		{"/add Ada 1815-02-30", "Dates must look like"},
		{"/people", "• Ada: 1815-12-10 (custom)"},
		{"/remove Ada", "Removed Ada."},
		{"/remove Ada", "Unknown person"},
		{"hello", "Commands:"},
		{"", "Commands:"},
	}
	for _, tt := range tests {
		reply := s.HandleCommand(ctx, tt.command)
		assert.Contains(t, reply.Text, tt.contains, "command %q", tt.command)
	}
	assert.Len(t, rec.forecasts, 2)
}

func TestHandleCommand_Chart(t *testing.T) {
	s, rec := newTestScheduler(t, nil, fakeRenderer{})
	reply := s.HandleCommand(context.Background(), "/chart Scott 2025-01-01 2025-01-31")
	assert.Equal(t, []byte("png"), reply.Photo)
	assert.Contains(t, reply.Caption, "2025-01-01 – 2025-01-31")
	assert.Empty(t, reply.Text)
	require.Len(t, rec.forecasts, 1)
	assert.Nil(t, rec.forecasts[0].Today)
}

func TestHandleCommand_MultiWordNames(t *testing.T) {
	s, rec := newTestScheduler(t, nil, fakeRenderer{})
	ctx := context.Background()

	assert.Equal(t, "Saved Mary Ann (1990-05-17).", s.HandleCommand(ctx, "/add Mary Ann 1990-05-17").Text)
	assert.Contains(t, s.HandleCommand(ctx, "/today Mary Ann").Text, "| Mary Ann |")

	reply := s.HandleCommand(ctx, "/chart Mary Ann")
	assert.Equal(t, []byte("png"), reply.Photo)

	reply = s.HandleCommand(ctx, "/chart mary ann 2025-01-01 2025-01-31")
	require.NotNil(t, reply.Photo, reply.Text)
	assert.Contains(t, reply.Caption, "Mary Ann")
	assert.Contains(t, reply.Caption, "2025-01-01 – 2025-01-31")

	reply = s.HandleCommand(ctx, "/chart Mary Ann 2025-03-01")
	require.NotNil(t, reply.Photo, reply.Text)
	assert.Contains(t, reply.Caption, "2025-03-01 – 2025-07-15")

	require.Len(t, rec.forecasts, 4)
	assert.Equal(t, "Removed Mary Ann.", s.HandleCommand(ctx, "/remove Mary Ann").Text)
}

func TestSplitTrailingDates(t *testing.T) {
	tests := []struct {
		args  []string
		name  string
		dates []string
	}{
		{[]string{"Scott"}, "Scott", []string{}},
		{[]string{"Mary", "Ann", "2025-01-01"}, "Mary Ann", []string{"2025-01-01"}},
		{[]string{"Mary", "Ann", "2025-01-01", "2025-02-01"}, "Mary Ann", []string{"2025-01-01", "2025-02-01"}},
		{[]string{"Agent", "007", "2025-01-01", "2025-02-01"}, "Agent 007", []string{"2025-01-01", "2025-02-01"}},
		{[]string{"2025-01-01"}, "", []string{"2025-01-01"}},
	}
	for _, tt := range tests {
		name, dates := splitTrailingDates(tt.args, 2)
		assert.Equal(t, tt.name, name, "%v", tt.args)
		assert.Equal(t, tt.dates, dates, "%v", tt.args)
	}
}

func TestHandleCommand_History(t *testing.T) {
	s, _ := newTestScheduler(t, nil, fakeRenderer{})
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/history").Text, "Usage: /history")
	assert.Contains(t, s.HandleCommand(ctx, "/history scott").Text, "No forecasts recorded for Scott")

	s.HandleCommand(ctx, "/chart Scott 2025-01-01 2025-01-31")
	s.HandleCommand(ctx, "/today scott")

	text := s.HandleCommand(ctx, "/history scott").Text
	assert.Contains(t, text, "<b>History</b> | Scott")
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[2], "2025-06-15")
	assert.Contains(t, lines[3], "2025-01-01 – 2025-01-31")
}

func TestRegisterAll_BadCron(t *testing.T) {
	s, _ := newTestScheduler(t, nil, nil)
	assert.Error(t, s.RegisterAll("not a cron"))
	assert.NoError(t, s.RegisterAll("0 0 7 * * *"))
}
