package sequence

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocator_Format(t *testing.T) {
	a, err := NewAllocator(1)
	require.NoError(t, err)

	contract := a.ContractNumber()
	invoice := a.InvoiceNumber()

	assert.True(t, strings.HasPrefix(contract, "CT-"), "got %s", contract)
	assert.True(t, strings.HasPrefix(invoice, "INV-"), "got %s", invoice)
	assert.Len(t, strings.Split(contract, "-"), 3)
}

func TestAllocator_UniqueUnderConcurrency(t *testing.T) {
	a, err := NewAllocator(2)
	require.NoError(t, err)

	const n = 1000
	numbers := make(chan string, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			numbers <- a.InvoiceNumber()
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]struct{}, n)
	for num := range numbers {
		_, dup := seen[num]
		assert.False(t, dup, "duplicate number %s", num)
		seen[num] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestNewAllocator_RejectsBadNode(t *testing.T) {
	_, err := NewAllocator(-1)
	assert.Error(t, err)
}
