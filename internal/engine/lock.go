package engine

import (
	"time"

	"deriv-trading-bot/internal/types"
)

// DefaultMaxLockDuration caps how long a contract lock may stay engaged
// before the safety timeout force-releases it.
const DefaultMaxLockDuration = 15 * time.Minute

// ContractLock enforces the one-open-position invariant. It is engaged when
// a purchase is confirmed and released on settlement, error, disconnect or
// timeout. PurchasePending covers the window between sending a buy and the
// confirmation arriving, so a second purchase can never be issued in between.
type ContractLock struct {
	locked           bool
	activeContractID string
	purchasePending  bool
	lockedAt         time.Time
	maxLockDuration  time.Duration
	now              func() time.Time
}

// NewContractLock builds an unlocked lock. A zero maxDuration selects the
// default timeout; the clock is injectable for tests.
func NewContractLock(maxDuration time.Duration, now func() time.Time) *ContractLock {
	if maxDuration <= 0 {
		maxDuration = DefaultMaxLockDuration
	}
	if now == nil {
		now = time.Now
	}
	return &ContractLock{maxLockDuration: maxDuration, now: now}
}

// Lock engages the lock for the given contract.
func (l *ContractLock) Lock(contractID string) {
	l.locked = true
	l.activeContractID = contractID
	l.lockedAt = l.now()
}

// Unlock releases the lock and clears the pending-purchase flag. It reports
// whether the lock was actually held.
func (l *ContractLock) Unlock() bool {
	was := l.locked
	l.locked = false
	l.activeContractID = ""
	l.purchasePending = false
	l.lockedAt = time.Time{}
	return was
}

// MarkPurchasePending flags that a buy request is in flight. The hold is
// timestamped so a confirmation that never arrives cannot wedge the session.
func (l *ContractLock) MarkPurchasePending() {
	l.purchasePending = true
	l.lockedAt = l.now()
}

// ClearPurchasePending drops the in-flight flag, e.g. after a failed send.
func (l *ContractLock) ClearPurchasePending() {
	l.purchasePending = false
	if !l.locked {
		l.lockedAt = time.Time{}
	}
}

// ActiveContractID returns the locked contract's id, if any.
func (l *ContractLock) ActiveContractID() string { return l.activeContractID }

// IsLocked reports whether a new trade must be suppressed. A hold past the
// safety timeout, confirmed or still pending, is force-released first.
func (l *ContractLock) IsLocked() bool {
	if l.TimedOut() {
		l.Unlock()
		return false
	}
	return l.locked || l.purchasePending
}

// TimedOut reports whether the current hold has exceeded the safety timeout
// without releasing it.
func (l *ContractLock) TimedOut() bool {
	return (l.locked || l.purchasePending) && !l.lockedAt.IsZero() &&
		l.now().Sub(l.lockedAt) > l.maxLockDuration
}

// State snapshots the lock for reporting.
func (l *ContractLock) State() types.LockState {
	return types.LockState{
		Locked:           l.locked,
		ActiveContractID: l.activeContractID,
		PurchasePending:  l.purchasePending,
		LockedAt:         l.lockedAt,
	}
}
