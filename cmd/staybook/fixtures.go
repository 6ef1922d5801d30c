package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"staybook/internal/domain/listings"
)

type listingFixture struct {
	ID                    string `json:"id"`
	Host                  string `json:"host"`
	Title                 string `json:"title"`
	BaseRate              int64  `json:"base_rate"`
	Currency              string `json:"currency"`
	BaseGuests            int    `json:"base_guests"`
	MaxExtraGuests        int    `json:"max_extra_guests"`
	ExtraGuestFeePerNight int64  `json:"extra_guest_fee_per_night"`
	CheckInTime           string `json:"check_in_time"`
	CheckOutTime          string `json:"check_out_time"`
	Timezone              string `json:"timezone"`
	MinNights             int    `json:"min_nights"`
	MaxNights             int    `json:"max_nights"`
}

// demoListings seed an empty store when no fixtures file is configured.
var demoListings = []listingFixture{
	{
		ID:                    "lst_demo_cabin",
		Host:                  "host_demo",
		Title:                 "Pine cabin",
		BaseRate:              350000,
		Currency:              "PHP",
		BaseGuests:            2,
		MaxExtraGuests:        2,
		ExtraGuestFeePerNight: 50000,
		CheckInTime:           "14:00",
		CheckOutTime:          "12:00",
		MinNights:             1,
	},
	{
		ID:           "lst_demo_loft",
		Host:         "host_demo",
		Title:        "City loft",
		BaseRate:     520000,
		Currency:     "PHP",
		BaseGuests:   4,
		CheckInTime:  "11:00",
		CheckOutTime: "12:00",
		MinNights:    2,
		MaxNights:    14,
	},
}

func (a *application) loadListingFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	fixtures := demoListings
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.Info("listing fixtures file not found, skipping", "path", path)
				return nil
			}
			return fmt.Errorf("read fixtures: %w", err)
		}
		if len(data) == 0 {
			logger.Warn("listing fixtures file empty", "path", path)
			return nil
		}
		fixtures = nil
		if err := json.Unmarshal(data, &fixtures); err != nil {
			return fmt.Errorf("decode fixtures: %w", err)
		}
	}

	now := time.Now()
	for _, fx := range fixtures {
		if existing, err := a.listings.ByID(ctx, listings.ListingID(fx.ID)); err == nil && existing != nil {
			logger.Debug("fixture listing already stored", "listing_id", fx.ID)
			continue
		}
		listing, err := listings.NewListing(listings.CreateParams{
			ID:                    listings.ListingID(fx.ID),
			Host:                  listings.HostID(fx.Host),
			Title:                 fx.Title,
			BaseRate:              fx.BaseRate,
			Currency:              fx.Currency,
			BaseGuests:            fx.BaseGuests,
			MaxExtraGuests:        fx.MaxExtraGuests,
			ExtraGuestFeePerNight: fx.ExtraGuestFeePerNight,
			CheckInTime:           fx.CheckInTime,
			CheckOutTime:          fx.CheckOutTime,
			Timezone:              fx.Timezone,
			MinNights:             fx.MinNights,
			MaxNights:             fx.MaxNights,
			Now:                   now,
		})
		if err != nil {
			logger.Error("fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		if err := a.listings.Save(ctx, listing); err != nil {
			logger.Error("cannot store fixture listing", "listing_id", fx.ID, "error", err)
			continue
		}
		a.snapshots.Invalidate(fx.ID)
		logger.Info("listing fixture imported", "listing_id", listing.ID)
	}
	return nil
}
