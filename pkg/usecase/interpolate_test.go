package usecase_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/distup/pkg/domain/model"
	"github.com/m-mizutani/distup/pkg/usecase"
)

func TestInterpolate(t *testing.T) {
	dc := model.DistroContext{
		Name:    "Ubuntu-22.04",
		Home:    "/home/alice",
		User:    "alice",
		WinHome: "/mnt/c/Users/alice",
	}

	t.Run("expands all recognized tokens", func(t *testing.T) {
		out := usecase.Interpolate("echo {{distro}} {{home}} {{user}} {{winhome}}", dc)
		gt.Equal(t, "echo Ubuntu-22.04 /home/alice alice /mnt/c/Users/alice", out)
	})

	t.Run("leaves unrecognized tokens verbatim", func(t *testing.T) {
		out := usecase.Interpolate("echo {{unknown}} {{ distro }}", dc)
		gt.Equal(t, "echo {{unknown}} {{ distro }}", out)
	})

	t.Run("substitution is single-pass", func(t *testing.T) {
		tricky := model.DistroContext{Name: "{{home}}", Home: "/home/alice"}
		out := usecase.Interpolate("cd {{distro}}", tricky)
		// The token smuggled in through the context value must not be
		// expanded again.
		gt.Equal(t, "cd {{home}}", out)
	})

	t.Run("repeated tokens all expand", func(t *testing.T) {
		out := usecase.Interpolate("{{user}}@{{distro}}:{{home}} su {{user}}", dc)
		gt.Equal(t, "alice@Ubuntu-22.04:/home/alice su alice", out)
	})

	t.Run("empty template stays empty", func(t *testing.T) {
		gt.Equal(t, "", usecase.Interpolate("", dc))
	})

	t.Run("empty context values substitute empty strings", func(t *testing.T) {
		out := usecase.Interpolate("run {{winhome}}/x", model.DistroContext{Name: "Debian"})
		gt.Equal(t, "run /x", out)
	})
}
