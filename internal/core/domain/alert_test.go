package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlert_Transition(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("acknowledge active", func(t *testing.T) {
		a := domain.Alert{Status: domain.AlertActive}
		require.NoError(t, a.Transition(domain.AlertAcknowledged, "u1", now))
		assert.Equal(t, domain.AlertAcknowledged, a.Status)
		require.NotNil(t, a.AcknowledgedBy)
		assert.Equal(t, "u1", *a.AcknowledgedBy)
		assert.Equal(t, now, *a.AcknowledgedAt)
	})

	t.Run("acknowledge twice", func(t *testing.T) {
		a := domain.Alert{Status: domain.AlertAcknowledged}
		assert.ErrorIs(t, a.Transition(domain.AlertAcknowledged, "u1", now), domain.ErrInvalidAlertTransition)
	})

	t.Run("resolve acknowledged", func(t *testing.T) {
		a := domain.Alert{Status: domain.AlertAcknowledged}
		require.NoError(t, a.Transition(domain.AlertResolved, "u1", now))
		assert.Equal(t, domain.AlertResolved, a.Status)
		assert.NotNil(t, a.ResolvedAt)
	})

	t.Run("closed alerts stay closed", func(t *testing.T) {
		a := domain.Alert{Status: domain.AlertDismissed}
		assert.ErrorIs(t, a.Transition(domain.AlertResolved, "u1", now), domain.ErrInvalidAlertTransition)
	})

	t.Run("cannot reactivate", func(t *testing.T) {
		a := domain.Alert{Status: domain.AlertActive}
		assert.ErrorIs(t, a.Transition(domain.AlertActive, "u1", now), domain.ErrInvalidAlertTransition)
	})
}

func TestAlert_SubjectID(t *testing.T) {
	a := domain.Alert{RelatedData: map[string]any{domain.SubjectAccount: "acc-1", "count": 3}}
	id, ok := a.SubjectID(domain.SubjectAccount)
	assert.True(t, ok)
	assert.Equal(t, "acc-1", id)

	_, ok = a.SubjectID(domain.SubjectGoal)
	assert.False(t, ok)
	_, ok = domain.Alert{}.SubjectID(domain.SubjectGoal)
	assert.False(t, ok)
}
