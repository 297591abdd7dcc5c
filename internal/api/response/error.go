package response

import "github.com/gin-gonic/gin"

type Error struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Extras  string `json:"extras"`
}

func (e Error) Error() string {
	return e.Extras
}

func NewError(code int, message string) Error {
	return Error{
		Success: false,
		Code:    code,
		Extras:  message,
	}
}

// AbortWithError writes e using the error envelope and stops the handler chain.
func AbortWithError(c *gin.Context, e Error) {
	ErrorResponse(c, e.Code, e.Extras)
	c.Abort()
}
