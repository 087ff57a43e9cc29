package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager("0123456789abcdef0123", "test", time.Minute, time.Hour)
}

func TestIssueAndValidate(t *testing.T) {
	m := newTestManager()
	id := uuid.New()

	pair, err := m.Issue(Subject{UserID: id, Email: "a@b.c", Name: "A", RoleCode: "CASHIER", Privileges: []string{"sale:create"}, TokenVersion: "v1"})
	require.NoError(t, err)

	claims, err := m.Validate(pair.AccessToken, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, []string{"sale:create"}, claims.Privileges)
	assert.Equal(t, "v1", claims.TokenVersion)

	refresh, err := m.Validate(pair.RefreshToken, RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, id, refresh.UserID)
	assert.Empty(t, refresh.Privileges)
}

func TestValidateRejectsWrongType(t *testing.T) {
	m := newTestManager()
	pair, err := m.Issue(Subject{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = m.Validate(pair.RefreshToken, AccessToken)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestValidateRejectsExpired(t *testing.T) {
	m := newTestManager()
	pair, err := m.Issue(Subject{UserID: uuid.New()})
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = m.Validate(pair.AccessToken, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	other := NewManager("another-secret-of-length", "test", time.Minute, time.Hour)
	pair, err := other.Issue(Subject{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = newTestManager().Validate(pair.AccessToken, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = newTestManager().Validate("", AccessToken)
	assert.ErrorIs(t, err, ErrMissingToken)
}
