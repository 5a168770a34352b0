package sequence

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Allocator hands out unique human-readable contract and invoice numbers.
// Numbers embed a snowflake id, so concurrent allocations can never collide
// the way count(*)+1 schemes do.
type Allocator struct {
	node *snowflake.Node
}

// NewAllocator creates an allocator for the given node id. Replicas must use
// distinct node ids.
func NewAllocator(nodeID int64) (*Allocator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	return &Allocator{node: node}, nil
}

// ContractNumber allocates a rental contract number, e.g. CT-202501-4QX9KZTB
func (a *Allocator) ContractNumber() string {
	return a.format("CT")
}

// InvoiceNumber allocates an invoice number, e.g. INV-202501-4QX9KZTB
func (a *Allocator) InvoiceNumber() string {
	return a.format("INV")
}

func (a *Allocator) format(prefix string) string {
	id := a.node.Generate()
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("200601"), strings.ToUpper(id.Base36()))
}
