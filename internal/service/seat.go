// FILE: internal/service/seat.go
package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/lixenwraith/auth"

	"chessclock/internal/core"
)

const (
	defaultSeatTTL = 24 * time.Hour
	seatSecretSize = 32
)

var (
	ErrInvalidSeat    = errors.New("invalid seat token")
	ErrWeakSeatSecret = fmt.Errorf("seat secret must be at least %d bytes", seatSecretSize)
)

// Seats holds the bearer tokens that let each side move in one game
type Seats struct {
	White string
	Black string
}

func newSeatSecret(configured string) ([]byte, error) {
	if configured != "" {
		if len(configured) < seatSecretSize {
			return nil, ErrWeakSeatSecret
		}
		return []byte(configured), nil
	}
	secret := make([]byte, seatSecretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate seat secret: %w", err)
	}
	return secret, nil
}

func (s *Service) issueSeats(gameID string) (*Seats, error) {
	white, err := s.issueSeat(gameID, core.ColorWhite)
	if err != nil {
		return nil, err
	}
	black, err := s.issueSeat(gameID, core.ColorBlack)
	if err != nil {
		return nil, err
	}
	return &Seats{White: white, Black: black}, nil
}

func (s *Service) issueSeat(gameID string, color core.Color) (string, error) {
	ttl := s.opts.SeatTTL
	if ttl <= 0 {
		ttl = defaultSeatTTL
	}
	claims := map[string]any{
		"gameId": gameID,
		"color":  color.String(),
	}
	token, err := auth.GenerateHS256Token(s.seatSecret, gameID+":"+color.String(), claims, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to issue %s seat: %w", color.Name(), err)
	}
	return token, nil
}

// VerifySeat returns the colour a seat token grants in gameID
func (s *Service) VerifySeat(gameID, token string) (core.Color, error) {
	_, claims, err := auth.ValidateHS256Token(s.seatSecret, token)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSeat, err)
	}
	if id, _ := claims["gameId"].(string); id != gameID {
		return 0, fmt.Errorf("%w: issued for another game", ErrInvalidSeat)
	}
	raw, _ := claims["color"].(string)
	color, err := core.ParseColor(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSeat, err)
	}
	return color, nil
}

// SeatsRequired reports whether moves must carry a seat token
func (s *Service) SeatsRequired() bool {
	return s.opts.RequireSeats
}
