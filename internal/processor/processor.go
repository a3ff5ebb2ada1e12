// FILE: internal/processor/processor.go
package processor

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"chessclock/internal/core"
	"chessclock/internal/notation"
	"chessclock/internal/service"
)

// Placement and side to move are required; the remaining fields are accepted
// and ignored
var fenPattern = regexp.MustCompile(`^[rnbqkpRNBQKP1-8/]+ [wb]( [KQkq-]+)?( [a-h1-8-]+)?( \d+)?( \d+)?$`)

// Processor turns commands into service calls and wire responses
type Processor struct {
	svc *service.Service
}

func New(svc *service.Service) *Processor {
	return &Processor{svc: svc}
}

func (p *Processor) Execute(cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateGame:
		return p.handleCreateGame(cmd)
	case CmdGetGame:
		return p.handleGetGame(cmd)
	case CmdMakeMove:
		return p.handleMakeMove(cmd)
	case CmdDeleteGame:
		return p.handleDeleteGame(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	case CmdGetTargets:
		return p.handleGetTargets(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// isFENSafe rejects control characters and anything that is not FEN-shaped
func (p *Processor) isFENSafe(fen string) bool {
	for _, r := range fen {
		if unicode.IsControl(r) {
			return false
		}
	}
	return fenPattern.MatchString(fen)
}

// isMoveSafe accepts exactly four characters in [a-h][1-8][a-h][1-8]
func (p *Processor) isMoveSafe(move string) bool {
	for _, r := range move {
		if unicode.IsControl(r) {
			return false
		}
	}

	if len(move) != 4 {
		return false
	}

	return move[0] >= 'a' && move[0] <= 'h' &&
		move[1] >= '1' && move[1] <= '8' &&
		move[2] >= 'a' && move[2] <= 'h' &&
		move[3] >= '1' && move[3] <= '8'
}

func (p *Processor) handleCreateGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	fen := strings.TrimSpace(args.FEN)
	if fen != "" && !p.isFENSafe(fen) {
		return p.errorResponse("invalid FEN format or characters", core.ErrInvalidFEN)
	}

	created, err := p.svc.CreateGame(service.CreateOptions{
		ClockSeconds: args.ClockSeconds,
		FEN:          fen,
	})
	if err != nil {
		return p.serviceError(err)
	}

	resp := p.buildGameResponse(created.Snapshot)
	if created.Seats != nil {
		resp.Seats = &core.SeatsResponse{
			White: created.Seats.White,
			Black: created.Seats.Black,
		}
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

func (p *Processor) handleGetGame(cmd Command) ProcessorResponse {
	snap, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.serviceError(err)
	}

	return ProcessorResponse{
		Success: true,
		Data:    p.buildGameResponse(snap),
	}
}

func (p *Processor) handleMakeMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	move := strings.ToLower(strings.TrimSpace(args.Move))
	if !p.isMoveSafe(move) {
		return p.errorResponse("invalid move format", core.ErrInvalidMove)
	}
	from, to, err := notation.ParseMove(move)
	if err != nil {
		return p.errorResponse("invalid move format", core.ErrInvalidMove)
	}

	var seat core.Color
	if p.svc.SeatsRequired() {
		if cmd.Seat == "" {
			return p.errorResponse("missing seat token", core.ErrUnauthorized)
		}
		if seat, err = p.svc.VerifySeat(cmd.GameID, cmd.Seat); err != nil {
			return p.errorResponse("invalid or expired seat token", core.ErrUnauthorized)
		}
	}

	snap, _, err := p.svc.SubmitMove(cmd.GameID, seat, from, to)
	if err != nil {
		return p.serviceError(err)
	}

	return ProcessorResponse{
		Success: true,
		Data:    p.buildGameResponse(snap),
	}
}

func (p *Processor) handleDeleteGame(cmd Command) ProcessorResponse {
	if err := p.svc.DeleteGame(cmd.GameID); err != nil {
		return p.serviceError(err)
	}

	return ProcessorResponse{
		Success: true,
	}
}

// handleGetBoard returns board visualization
func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	snap, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.serviceError(err)
	}

	return ProcessorResponse{
		Success: true,
		Data: core.BoardResponse{
			FEN:   snap.State.FEN(),
			Board: snap.State.Board().ToASCII(),
		},
	}
}

// handleGetTargets lists where the piece on a square may legally go. Only the
// side to move has targets, and a finished game has none.
func (p *Processor) handleGetTargets(cmd Command) ProcessorResponse {
	square, _ := cmd.Args.(string)
	from, err := notation.ParseSquare(square)
	if err != nil {
		return p.errorResponse("invalid square", core.ErrInvalidRequest)
	}

	snap, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.serviceError(err)
	}

	targets := []string{}
	for _, to := range snap.State.Targets(from) {
		targets = append(targets, to.String())
	}

	return ProcessorResponse{
		Success: true,
		Data: core.TargetsResponse{
			From:    from.String(),
			Targets: targets,
		},
	}
}

// buildGameResponse constructs standard game response
func (p *Processor) buildGameResponse(snap service.Snapshot) core.GameResponse {
	st := snap.State
	clocks := st.Clocks()
	resp := core.GameResponse{
		GameID:   snap.GameID,
		FEN:      st.FEN(),
		Turn:     st.Turn().String(),
		Status:   st.Status().String(),
		FlagFall: st.FlagFall(),
		Moves:    st.Notation(),
		Clocks: core.ClockResponse{
			White: clocks.White,
			Black: clocks.Black,
		},
		Revision: snap.Revision,
	}
	if winner := st.Winner(); winner != 0 {
		resp.Winner = winner.String()
	}

	if last, ok := st.LastMove(); ok {
		info := &core.MoveInfo{
			Move:        last.Notation,
			From:        last.From.String(),
			To:          last.To.String(),
			PlayerColor: last.Piece.Color.String(),
		}
		if last.IsCapture() {
			info.Captured = last.Captured.Kind.String()
		}
		resp.LastMove = info
	}

	return resp
}

// serviceError maps service and rules errors onto wire codes
func (p *Processor) serviceError(err error) ProcessorResponse {
	if rej, ok := core.AsRejection(err); ok {
		if rej.Over {
			return p.errorResponseWithDetails(rej.Error(), core.ErrGameOver, "")
		}
		return p.errorResponseWithDetails(rej.Error(), core.ErrInvalidMove, rej.Reason.String())
	}

	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return p.errorResponse("game not found", core.ErrGameNotFound)
	case errors.Is(err, service.ErrGameLimit):
		return p.errorResponse("game limit reached", core.ErrResourceLimit)
	case errors.Is(err, service.ErrInvalidFEN):
		return p.errorResponseWithDetails("invalid FEN", core.ErrInvalidFEN, err.Error())
	case errors.Is(err, service.ErrNotYourSeat):
		return p.errorResponse(err.Error(), core.ErrNotYourTurn)
	default:
		return p.errorResponseWithDetails("internal error", core.ErrInternalError, err.Error())
	}
}

// errorResponse creates error response
func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return p.errorResponseWithDetails(message, code, "")
}

func (p *Processor) errorResponseWithDetails(message, code, details string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error:   message,
			Code:    code,
			Details: details,
		},
	}
}
