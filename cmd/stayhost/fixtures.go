package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"stayhost/internal/app/application"
	"stayhost/internal/app/commands"
	"stayhost/internal/app/dto"
	roomsapp "stayhost/internal/app/handlers/rooms"
	domainrooms "stayhost/internal/domain/rooms"
)

type roomFixture struct {
	ID           string         `json:"id"`
	Host         string         `json:"host"`
	Name         string         `json:"name"`
	Currency     string         `json:"currency"`
	BasePrice    int64          `json:"base_price"`
	CleaningFee  int64          `json:"cleaning_fee"`
	ServiceFee   int64          `json:"service_fee"`
	SpecialRates []rateFixture  `json:"special_rates"`
	Blocks       []blockFixture `json:"blocks"`
}

type rateFixture struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Kind      string `json:"kind"`
	Amount    int64  `json:"amount"`
	Percent   int64  `json:"percent"`
}

type blockFixture struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

// loadRoomFixtures seeds rooms through the command bus so fixtures obey the same rules as API calls.
// Rooms that already exist are left alone.
func loadRoomFixtures(ctx context.Context, app application.Application, path string, logger *slog.Logger) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("room fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("room fixtures file empty", "path", path)
		return nil
	}
	var fixtures []roomFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	for _, fx := range fixtures {
		if err := seedRoom(ctx, app.Commands, fx); err != nil {
			if errors.Is(err, domainrooms.ErrRoomExists) {
				logger.Info("fixture room already present", "room_id", fx.ID)
				continue
			}
			logger.Error("fixture room rejected", "room_id", fx.ID, "error", err)
			continue
		}
		logger.Info("room fixture imported", "room_id", fx.ID)
	}
	return nil
}

func seedRoom(ctx context.Context, bus commands.Bus, fx roomFixture) error {
	created, err := commands.Dispatch[roomsapp.CreateRoomCommand, *dto.Room](ctx, bus, roomsapp.CreateRoomCommand{
		HostCommand: roomsapp.HostCommand{HostID: fx.Host},
		RoomID:      fx.ID,
		Name:        fx.Name,
		Currency:    fx.Currency,
		BasePrice:   fx.BasePrice,
		CleaningFee: fx.CleaningFee,
		ServiceFee:  fx.ServiceFee,
	})
	if err != nil {
		return err
	}
	target := roomsapp.ForRoom(fx.Host, created.ID, "")
	for _, rate := range fx.SpecialRates {
		_, err := commands.Dispatch[roomsapp.AddSpecialRateCommand, *dto.Room](ctx, bus, roomsapp.AddSpecialRateCommand{
			RoomCommand: target,
			RateInput: roomsapp.RateInput{
				StartDate: rate.StartDate,
				EndDate:   rate.EndDate,
				Kind:      rate.Kind,
				Amount:    rate.Amount,
				Percent:   rate.Percent,
			},
		})
		if err != nil {
			return fmt.Errorf("special rate %s..%s: %w", rate.StartDate, rate.EndDate, err)
		}
	}
	for _, block := range fx.Blocks {
		_, err := commands.Dispatch[roomsapp.BlockDatesCommand, *dto.Room](ctx, bus, roomsapp.BlockDatesCommand{
			RoomCommand: target,
			StartDate:   block.StartDate,
			EndDate:     block.EndDate,
			Reason:      block.Reason,
		})
		if err != nil {
			return fmt.Errorf("block %s..%s: %w", block.StartDate, block.EndDate, err)
		}
	}
	return nil
}
