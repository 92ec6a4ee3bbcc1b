// Package settlement holds the pure ledger arithmetic: splitting an order's
// gross value into platform commission and artist earning. No state, no I/O.
package settlement

import (
	"math"

	"handcraft_market/internal/models"
)

// Settlement is the computed split for one gross amount.
type Settlement struct {
	PlatformCommission int64 `json:"platform_commission"`
	ArtistEarning      int64 `json:"artist_earning"`
	TotalAmount        int64 `json:"total_amount"` // gross + shipping fee
}

// Compute splits gross into platform commission and artist earning and adds
// the shipping fee into the order total. Amounts are whole VND. The
// commission is rounded half-up; any rounding remainder stays with the
// artist, so PlatformCommission + ArtistEarning == gross always holds and
// the platform cut is never overstated.
func Compute(gross, shippingFee int64, rate float64) (Settlement, error) {
	if gross < 0 || shippingFee < 0 {
		return Settlement{}, models.ErrInvalidAmount
	}
	if rate < 0 || rate > 1 {
		return Settlement{}, models.ErrInvalidAmount
	}

	commission := int64(math.Round(float64(gross) * rate))
	if commission > gross {
		commission = gross
	}

	return Settlement{
		PlatformCommission: commission,
		ArtistEarning:      gross - commission,
		TotalAmount:        gross + shippingFee,
	}, nil
}

// SplitByArtist groups order items into per-artist gross amounts. An order
// with items from several artisans settles as one commission record per
// artist.
func SplitByArtist(items []models.OrderItem) map[uint]int64 {
	gross := make(map[uint]int64, len(items))
	for _, item := range items {
		gross[item.ArtistID] += item.Subtotal
	}
	return gross
}
