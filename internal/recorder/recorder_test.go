package recorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oks-citadel/applyflow/internal/core"
	"github.com/oks-citadel/applyflow/internal/core/mocks"
	"github.com/oks-citadel/applyflow/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func sampleOutcome() *core.SubmissionOutcome {
	return &core.SubmissionOutcome{
		TaskID:       uuid.New(),
		Status:       core.StatusSucceeded,
		ReasonCode:   core.ReasonSubmitted,
		AdapterKind:  "greenhouse",
		AttemptCount: 1,
		CompletedAt:  time.Now().UTC(),
	}
}

func TestRecordPersistsAndPublishes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := storage.NewMemoryStore()
	sink := mocks.NewMockOutcomeSink(ctrl)
	outcome := sampleOutcome()

	sink.EXPECT().Publish(gomock.Any(), outcome).Return(nil)

	r := New(store, sink, nil, testLogger())
	require.NoError(t, r.Record(context.Background(), outcome))

	saved, err := store.ListOutcomesForTask(context.Background(), outcome.TaskID)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, core.StatusSucceeded, saved[0].Status)
}

func TestRecordToleratesSinkFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := storage.NewMemoryStore()
	sink := mocks.NewMockOutcomeSink(ctrl)
	outcome := sampleOutcome()

	sink.EXPECT().Publish(gomock.Any(), outcome).Return(assert.AnError)

	r := New(store, sink, nil, testLogger())
	require.NoError(t, r.Record(context.Background(), outcome))

	saved, err := store.ListOutcomesForTask(context.Background(), outcome.TaskID)
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestRecordAttemptSkipsSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := storage.NewMemoryStore()
	sink := mocks.NewMockOutcomeSink(ctrl)

	attempt := sampleOutcome()
	attempt.Status = core.StatusFailedRetryable
	attempt.ReasonCode = core.ReasonInfrastructure

	// No Publish expectation: attempt rows are store-only.
	r := New(store, sink, nil, testLogger())
	require.NoError(t, r.RecordAttempt(context.Background(), attempt))

	saved, err := store.ListOutcomesForTask(context.Background(), attempt.TaskID)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, core.StatusFailedRetryable, saved[0].Status)
}

func TestRecordWithoutSink(t *testing.T) {
	store := storage.NewMemoryStore()
	r := New(store, nil, nil, testLogger())
	require.NoError(t, r.Record(context.Background(), sampleOutcome()))
}

func TestWebhookSinkDelivers(t *testing.T) {
	var received core.SubmissionOutcome
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	outcome := sampleOutcome()
	sink := NewWebhookSink(ts.URL, ts.Client())
	require.NoError(t, sink.Publish(context.Background(), outcome))
	assert.Equal(t, outcome.TaskID, received.TaskID)
	assert.Equal(t, core.ReasonSubmitted, received.ReasonCode)
}

func TestWebhookSinkReportsBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "consumer down", http.StatusBadGateway)
	}))
	defer ts.Close()

	sink := NewWebhookSink(ts.URL, ts.Client())
	err := sink.Publish(context.Background(), sampleOutcome())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
