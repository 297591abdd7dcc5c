package validator

import (
	"ctchen222/Tic-Tac-Toe-Engine/internal/game"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	// Initialize validation
	validate = validator.New(validator.WithRequiredStructEnabled())

	// "cell" accepts a board index in [0, 8].
	if err := validate.RegisterValidation("cell", validateCell); err != nil {
		panic(err)
	}
	// "mark" accepts a player mark, X or O.
	if err := validate.RegisterValidation("mark", validateMark); err != nil {
		panic(err)
	}
}

func GetValidator() *validator.Validate {
	return validate
}

func validateCell(fl validator.FieldLevel) bool {
	return game.Move(fl.Field().Int()).Valid()
}

func validateMark(fl validator.FieldLevel) bool {
	return game.PlayerMark(fl.Field().String()).IsPlayer()
}
