package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to SessionStatus
		want     bool
	}{
		{SessionStatusPending, SessionStatusAccepted, true},
		{SessionStatusPending, SessionStatusCancelled, true},
		{SessionStatusPending, SessionStatusCompleted, false},
		{SessionStatusAccepted, SessionStatusCompleted, true},
		{SessionStatusAccepted, SessionStatusCancelled, false},
		{SessionStatusAccepted, SessionStatusPending, false},
		{SessionStatusCompleted, SessionStatusPending, false},
		{SessionStatusCancelled, SessionStatusAccepted, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestSessionStatus_IsTerminal(t *testing.T) {
	assert.False(t, SessionStatusPending.IsTerminal())
	assert.False(t, SessionStatusAccepted.IsTerminal())
	assert.True(t, SessionStatusCompleted.IsTerminal())
	assert.True(t, SessionStatusCancelled.IsTerminal())
}

func TestSessionStatus_IsValid(t *testing.T) {
	assert.True(t, SessionStatusPending.IsValid())
	assert.False(t, SessionStatus("rejected").IsValid())
}

func TestSubOfferStatus_IsValid(t *testing.T) {
	assert.True(t, SubOfferStatusSent.IsValid())
	assert.True(t, SubOfferStatusAccepted.IsValid())
	assert.True(t, SubOfferStatusCancelled.IsValid())
	assert.False(t, SubOfferStatus("pending").IsValid())
}

func TestSenior_CoversCategory(t *testing.T) {
	s := Senior{ConsultationCategories: "研究相談,就活相談"}

	assert.True(t, s.CoversCategory("研究相談"))
	assert.True(t, s.CoversCategory("就活相談"))
	assert.False(t, s.CoversCategory("その他"))
	assert.False(t, s.CoversCategory(""))
}

func TestJunior_ConsultationDocument(t *testing.T) {
	j := Junior{
		ConsultationTitle:    "研究テーマ",
		ConsultationContent:  "決め方がわからない",
		ConsultationCategory: "研究相談",
	}

	assert.Equal(t, "研究テーマ 決め方がわからない 研究相談", j.ConsultationDocument())
}
