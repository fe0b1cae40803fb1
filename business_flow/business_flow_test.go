package businessflow

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movedocs/tariffworks/utils"
)

func TestShouldRegenerate(t *testing.T) {
	tests := []struct {
		name                 string
		scheduleChanged      bool
		methodChangeApproved bool
		expected             bool
	}{
		{name: "nothing changed", scheduleChanged: false, methodChangeApproved: false, expected: false},
		{name: "schedule changed", scheduleChanged: true, methodChangeApproved: false, expected: true},
		{name: "method change approved", scheduleChanged: false, methodChangeApproved: true, expected: true},
		{name: "both", scheduleChanged: true, methodChangeApproved: true, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShouldRegenerate(tt.scheduleChanged, tt.methodChangeApproved))
		})
	}
}

func TestOrderLockGenerations(t *testing.T) {
	locks := newOrderLockTable()

	assert.Equal(t, uint64(0), locks.current(1))
	assert.Equal(t, uint64(1), locks.bump(1))
	assert.Equal(t, uint64(2), locks.bump(1))
	assert.Equal(t, uint64(2), locks.current(1))

	// counters are per order
	assert.Equal(t, uint64(1), locks.bump(2))
	assert.Equal(t, uint64(2), locks.current(1))
}

func TestOrderLockSerializes(t *testing.T) {
	locks := newOrderLockTable()

	require.True(t, locks.acquire(1))

	var mu sync.Mutex
	var order []int
	done := make(chan struct{})
	go func() {
		require.True(t, locks.acquire(1))
		mu.Lock()
		order = append(order, 2)
		mu.Unlock()
		locks.release(1)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	order = append(order, 1)
	mu.Unlock()
	locks.release(1)

	<-done
	assert.Equal(t, []int{1, 2}, order)
}

func TestOrderLockWaiterBound(t *testing.T) {
	locks := newOrderLockTable()

	// holder plus a full queue
	require.True(t, locks.acquire(1))

	var wg sync.WaitGroup
	for i := 0; i < utils.MaxRegenerationWaiters-1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if locks.acquire(1) {
				locks.release(1)
			}
		}()
	}

	// wait until every goroutine is queued
	deadline := time.Now().Add(2 * time.Second)
	for {
		l := locks.get(1)
		l.meta.Lock()
		waiters := l.waiters
		l.meta.Unlock()
		if waiters == utils.MaxRegenerationWaiters {
			break
		}
		require.True(t, time.Now().Before(deadline), "waiters never filled")
		time.Sleep(5 * time.Millisecond)
	}

	// queue full: next caller is refused rather than queued
	assert.False(t, locks.acquire(1))

	// a different order is unaffected
	require.True(t, locks.acquire(2))
	locks.release(2)

	locks.release(1)
	wg.Wait()

	// queue drained, acquiring works again
	require.True(t, locks.acquire(1))
	locks.release(1)
}

func TestSanitizeMCNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "already clean", input: "MC-123456", expected: "MC-123456"},
		{name: "spaces and slashes", input: "MC 123/456", expected: "MC-123-456"},
		{name: "leading and trailing junk", input: " MC-123456 ", expected: "MC-123456"},
		{name: "empty", input: "", expected: "UNKNOWN"},
		{name: "all junk", input: "///", expected: "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeMCNumber(tt.input))
		})
	}
}

func TestDocumentFilename(t *testing.T) {
	assert.Equal(t, "Tariff-MC-123456.pdf", DocumentFilename("Tariff", "MC-123456"))
	assert.Equal(t, "Tariff-UNKNOWN.pdf", DocumentFilename("Tariff", ""))
}

func TestValidatePagination(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		expectedPage int
		expectedSize int
		expectedErr  error
	}{
		{name: "zero values take defaults", page: 0, pageSize: 0, expectedPage: 1, expectedSize: 20},
		{name: "explicit values pass through", page: 3, pageSize: 50, expectedPage: 3, expectedSize: 50},
		{name: "negative page rejected", page: -1, pageSize: 20, expectedErr: ErrInvalidPage},
		{name: "oversized page size rejected", page: 1, pageSize: 500, expectedErr: ErrInvalidPageSize},
		{name: "negative page size rejected", page: 1, pageSize: -5, expectedErr: ErrInvalidPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, size, err := validatePagination(tt.page, tt.pageSize)
			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectedErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedPage, page)
			assert.Equal(t, tt.expectedSize, size)
		})
	}
}

func TestBusinessErrorUnwrap(t *testing.T) {
	err := NewBusinessError("ORDER_NOT_FOUND", "Tariff order not found", ErrOrderNotFound)

	assert.True(t, errors.Is(err, ErrOrderNotFound))
	assert.True(t, IsOrderNotFound(err))
	assert.False(t, IsOrderAccessDenied(err))
	assert.Contains(t, err.Error(), "Tariff order not found")
	assert.Equal(t, "ORDER_NOT_FOUND", err.Code)
}

func TestClientMetadata(t *testing.T) {
	md := NewClientMetadata("203.0.113.9", "test-agent")
	md.SetRequestID("req-1")
	md.AddAdditional("endpoint", "/api/v1/tariffs")

	assert.Equal(t, "203.0.113.9", md.IPAddress)
	assert.Equal(t, "test-agent", md.UserAgent)
	assert.Equal(t, "req-1", md.RequestID)
	assert.Equal(t, "/api/v1/tariffs", md.Additional["endpoint"])
}
