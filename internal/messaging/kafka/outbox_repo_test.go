package kafka

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeOutboxRepo struct {
	created []OutboxEvent
}

func (f *fakeOutboxRepo) WithTx(tx *sql.Tx) OutboxRepository { return f }

func (f *fakeOutboxRepo) Create(ctx context.Context, event OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutboxRepo) ListPending(ctx context.Context, limit int) ([]OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepo) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

func TestStageEvent_FillsIDPayloadAndPendingStatus(t *testing.T) {
	repo := &fakeOutboxRepo{}

	err := StageEvent(context.Background(), repo, nil, OutboxEvent{
		AggregateType: "employee",
		AggregateID:   "emp-1",
		EventType:     "employee_created",
		Topic:         "hr.employee.lifecycle.v1",
	}, map[string]string{"employee_id": "emp-1"})

	assert.NoError(t, err)
	assert.Len(t, repo.created, 1)

	staged := repo.created[0]
	assert.NotEmpty(t, staged.ID)
	assert.Equal(t, OutboxStatusPending, staged.Status)

	var payload map[string]string
	assert.NoError(t, json.Unmarshal(staged.Payload, &payload))
	assert.Equal(t, "emp-1", payload["employee_id"])
}

func TestStageEvent_RejectsMissingTopic(t *testing.T) {
	repo := &fakeOutboxRepo{}

	err := StageEvent(context.Background(), repo, nil, OutboxEvent{
		AggregateType: "employee",
		AggregateID:   "emp-1",
		EventType:     "employee_created",
	}, map[string]string{"employee_id": "emp-1"})

	assert.Error(t, err)
	assert.Empty(t, repo.created)
}

func TestValidateOutboxEvent_RejectsUnknownStatus(t *testing.T) {
	err := ValidateOutboxEvent(OutboxEvent{
		ID:      "out-1",
		Topic:   "hr.employee.lifecycle.v1",
		Payload: []byte(`{}`),
		Status:  "queued",
	})

	assert.Error(t, err)
}
