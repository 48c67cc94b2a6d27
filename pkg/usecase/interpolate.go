package usecase

import (
	"strings"

	"github.com/m-mizutani/distup/pkg/domain/model"
)

// Interpolation tokens recognized in command templates. This is a fixed
// vocabulary, not a template language; anything else shaped like a token is
// left verbatim.
const (
	TokenDistro  = "{{distro}}"
	TokenHome    = "{{home}}"
	TokenUser    = "{{user}}"
	TokenWinHome = "{{winhome}}"
)

// Interpolate expands the recognized tokens in a command template from the
// distribution context. Substitution is single-pass: a token smuggled in
// through a context value is not expanded again.
func Interpolate(template string, dc model.DistroContext) string {
	r := strings.NewReplacer(
		TokenDistro, dc.Name,
		TokenHome, dc.Home,
		TokenUser, dc.User,
		TokenWinHome, dc.WinHome,
	)
	return r.Replace(template)
}
