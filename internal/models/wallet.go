package models

// WalletSummary is the derived per-artist view of commission money.
// PendingCommission covers unreleased, unreversed earnings; AvailableBalance
// is released earnings minus approved payouts minus amounts reserved by
// pending withdraw requests.
type WalletSummary struct {
	ArtistID          uint  `json:"artist_id"`
	PendingCommission int64 `json:"pending_commission"`
	AvailableBalance  int64 `json:"available_balance"`
}
