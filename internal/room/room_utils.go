package room

import (
	"ctchen222/Tic-Tac-Toe-Engine/internal/game"
	"ctchen222/Tic-Tac-Toe-Engine/internal/session"
	"ctchen222/Tic-Tac-Toe-Engine/pkg/proto"
)

// NewStateMessage converts a session state into a wire message of the given type.
func NewStateMessage(msgType string, st session.State) *proto.ServerToClientMessage {
	msg := &proto.ServerToClientMessage{
		Type:    msgType,
		GameID:  st.ID,
		Board:   st.Board.Rows(),
		Human:   st.HumanMark,
		Outcome: st.Outcome,
		Winner:  st.Outcome.Winner(),
		Games:   st.Games,
	}
	if !st.Outcome.IsTerminal() {
		msg.Next = st.CurrentTurn
	}
	if st.LastMove != game.NoMove {
		last := int(st.LastMove)
		msg.LastMove = &last
	}
	for _, mv := range st.WinningLine {
		msg.WinningLine = append(msg.WinningLine, int(mv))
	}
	if st.Outcome.IsTerminal() {
		msg.Message = OutcomeMessage(st)
	}
	return msg
}

// OutcomeMessage is the announcement shown when a game ends.
func OutcomeMessage(st session.State) string {
	switch st.Outcome.Winner() {
	case st.HumanMark:
		return "Player win!"
	case st.EngineMark:
		return "Computer win!"
	}
	if st.Outcome == game.Draw {
		return "draw"
	}
	return ""
}
