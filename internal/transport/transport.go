// FILE: internal/transport/transport.go
package transport

import (
	"chessclock/internal/core"
	"chessclock/internal/game"
	"chessclock/internal/service"
)

// Games is the game service surface a transport drives
type Games interface {
	CreateGame(opts service.CreateOptions) (service.Created, error)
	GetGame(gameID string) (service.Snapshot, error)
	SubmitMove(gameID string, seat core.Color, from, to core.Position) (service.Snapshot, game.Outcome, error)
	Select(gameID string, pos core.Position) (service.Snapshot, error)
	Deselect(gameID string) (service.Snapshot, error)
	DeleteGame(gameID string) error
}

var _ Games = (*service.Service)(nil)
