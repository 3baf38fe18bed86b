package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockBlocksWhileHeld(t *testing.T) {
	l := NewContractLock(0, nil)

	assert.False(t, l.IsLocked())

	l.Lock("12345")
	assert.True(t, l.IsLocked())
	assert.Equal(t, "12345", l.ActiveContractID())

	assert.True(t, l.Unlock())
	assert.False(t, l.IsLocked())
	assert.Equal(t, "", l.ActiveContractID())

	// second unlock reports nothing was held
	assert.False(t, l.Unlock())
}

func TestPurchasePendingCountsAsLocked(t *testing.T) {
	l := NewContractLock(0, nil)

	l.MarkPurchasePending()
	assert.True(t, l.IsLocked(), "in-flight purchase must suppress new trades")

	l.ClearPurchasePending()
	assert.False(t, l.IsLocked())
}

func TestLockTimeoutForceReleases(t *testing.T) {
	now := time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	l := NewContractLock(15*time.Minute, clock)
	l.Lock("999")

	now = now.Add(10 * time.Minute)
	assert.True(t, l.IsLocked())
	assert.False(t, l.TimedOut())

	now = now.Add(6 * time.Minute)
	assert.True(t, l.TimedOut())
	assert.False(t, l.IsLocked(), "expired lock must self-release")
	assert.Equal(t, "", l.ActiveContractID())
}

func TestPurchasePendingTimesOut(t *testing.T) {
	now := time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	l := NewContractLock(15*time.Minute, clock)
	l.MarkPurchasePending()

	now = now.Add(10 * time.Minute)
	assert.True(t, l.IsLocked())

	// a buy whose confirmation never arrives must not wedge the session
	now = now.Add(6 * time.Minute)
	assert.True(t, l.TimedOut())
	assert.False(t, l.IsLocked(), "purchase pending past the safety timeout must force-release")
	assert.False(t, l.State().PurchasePending)
}

func TestConfirmationRestartsTimeoutClock(t *testing.T) {
	now := time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	l := NewContractLock(15*time.Minute, clock)
	l.MarkPurchasePending()

	now = now.Add(14 * time.Minute)
	l.Lock("999")
	l.ClearPurchasePending()

	now = now.Add(10 * time.Minute)
	assert.True(t, l.IsLocked(), "confirmation re-stamps the hold")

	now = now.Add(6 * time.Minute)
	assert.False(t, l.IsLocked())
}

func TestUnlockClearsPendingFlag(t *testing.T) {
	l := NewContractLock(0, nil)
	l.Lock("1")
	l.MarkPurchasePending()

	l.Unlock()
	assert.False(t, l.IsLocked())
	assert.False(t, l.State().PurchasePending)
}
