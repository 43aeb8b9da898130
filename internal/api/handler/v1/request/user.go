package request

import (
	"errors"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
)

// Letters of any script, digits, '_' and '.', not digits only.
const nicknamePattern = `^(?!\d+$)[\p{L}\p{N}_.]{2,50}$`

var (
	nicknameExp = regexp2.MustCompile(nicknamePattern, regexp2.None)

	errInvalidNickname = errors.New("nickname must be 2-50 letters, digits, '_' or '.', and not only digits")
)

type CreateUserRequest struct {
	Nickname string `json:"nickname"`
}

func (req *CreateUserRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Nickname, validation.Required),
	)
	if err != nil {
		return err
	}

	ok, err := nicknameExp.MatchString(req.Nickname)
	if err != nil || !ok {
		return errInvalidNickname
	}

	return nil
}
