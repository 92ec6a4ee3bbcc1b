package settlement_test

import (
	"errors"
	"testing"

	"handcraft_market/internal/models"
	"handcraft_market/internal/settlement"
)

func TestComputeExampleScenario(t *testing.T) {
	s, err := settlement.Compute(2_000_000, 50_000, 0.10)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if s.PlatformCommission != 200_000 {
		t.Error("Expected commission 200000, got", s.PlatformCommission)
	}
	if s.ArtistEarning != 1_800_000 {
		t.Error("Expected earning 1800000, got", s.ArtistEarning)
	}
	if s.TotalAmount != 2_050_000 {
		t.Error("Expected total 2050000, got", s.TotalAmount)
	}
}

func TestComputeRoundingHalfUp(t *testing.T) {
	// 15 * 0.1 = 1.5 rounds up to 2, remainder stays with the artist
	s, err := settlement.Compute(15, 0, 0.10)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if s.PlatformCommission != 2 {
		t.Error("Expected commission 2, got", s.PlatformCommission)
	}
	if s.ArtistEarning != 13 {
		t.Error("Expected earning 13, got", s.ArtistEarning)
	}
}

func TestComputeConservation(t *testing.T) {
	grosses := []int64{0, 1, 3, 99, 101, 12_345, 999_999, 2_000_000, 7_777_777_777}
	rates := []float64{0, 0.03, 0.1, 0.15, 0.333, 0.5, 0.999, 1}
	for _, g := range grosses {
		for _, r := range rates {
			s, err := settlement.Compute(g, 0, r)
			if err != nil {
				t.Fatalf("Compute(%d, 0, %v): %v", g, r, err)
			}
			if s.PlatformCommission+s.ArtistEarning != g {
				t.Errorf("Compute(%d, 0, %v): commission %d + earning %d != gross",
					g, r, s.PlatformCommission, s.ArtistEarning)
			}
			if s.PlatformCommission < 0 || s.ArtistEarning < 0 {
				t.Errorf("Compute(%d, 0, %v): negative split %+v", g, r, s)
			}
		}
	}
}

func TestComputeInvalidInput(t *testing.T) {
	cases := []struct {
		gross, shipping int64
		rate            float64
	}{
		{-1, 0, 0.1},
		{100, -1, 0.1},
		{100, 0, -0.01},
		{100, 0, 1.01},
	}
	for _, c := range cases {
		_, err := settlement.Compute(c.gross, c.shipping, c.rate)
		if !errors.Is(err, models.ErrInvalidAmount) {
			t.Errorf("Compute(%d, %d, %v): expected ErrInvalidAmount, got %v",
				c.gross, c.shipping, c.rate, err)
		}
	}
}

func TestSplitByArtist(t *testing.T) {
	items := []models.OrderItem{
		{ArtistID: 1, Subtotal: 500_000},
		{ArtistID: 2, Subtotal: 300_000},
		{ArtistID: 1, Subtotal: 200_000},
	}
	gross := settlement.SplitByArtist(items)
	if len(gross) != 2 {
		t.Fatal("Expected 2 artists, got", len(gross))
	}
	if gross[1] != 700_000 {
		t.Error("Expected artist 1 gross 700000, got", gross[1])
	}
	if gross[2] != 300_000 {
		t.Error("Expected artist 2 gross 300000, got", gross[2])
	}
}
