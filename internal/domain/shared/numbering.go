package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document number prefixes
const (
	PrefixPurchaseOrder = "PO"
	PrefixGoodsReceipt  = "GRN"
	PrefixInvoice       = "INV"
	PrefixAllocation    = "ALC"
	PrefixTransfer      = "TRF"
	PrefixBatch         = "B"
)

// numberFormat describes how a document number is laid out
type numberFormat struct {
	period string // Go time layout for the period segment
	width  int
}

var numberFormats = map[string]numberFormat{
	PrefixPurchaseOrder: {period: "200601", width: 5},
	PrefixGoodsReceipt:  {period: "200601", width: 5},
	PrefixInvoice:       {period: "2006", width: 4},
	PrefixAllocation:    {period: "20060102", width: 4},
	PrefixTransfer:      {period: "20060102", width: 4},
	PrefixBatch:         {period: "20060102", width: 4},
}

// SequenceKey returns the counter key for a prefix at a point in time,
// e.g. "PO-202406". Counters restart every period.
func SequenceKey(prefix string, at time.Time) string {
	f, ok := numberFormats[prefix]
	if !ok {
		return prefix
	}
	return prefix + "-" + at.Format(f.period)
}

// FormatDocumentNumber renders a document number such as PO-202406-00042
func FormatDocumentNumber(prefix string, at time.Time, seq int64) string {
	f, ok := numberFormats[prefix]
	if !ok {
		return fmt.Sprintf("%s-%d", prefix, seq)
	}
	return fmt.Sprintf("%s-%s-%0*d", prefix, at.Format(f.period), f.width, seq)
}

// NextDocumentNumber allocates the next number for prefix from the sequence repository
func NextDocumentNumber(ctx context.Context, seqs SequenceRepository, tenantID uuid.UUID, prefix string, at time.Time) (string, error) {
	seq, err := seqs.Next(ctx, tenantID, SequenceKey(prefix, at))
	if err != nil {
		return "", fmt.Errorf("failed to allocate %s number: %w", prefix, err)
	}
	return FormatDocumentNumber(prefix, at, seq), nil
}
