package usecase

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/distup/pkg/domain"
	"github.com/m-mizutani/distup/pkg/domain/model"
)

// WSLDispatcher executes resolved commands inside WSL distributions by
// shelling out to the wsl binary. It implements both CommandDispatcher and
// DistroService.
type WSLDispatcher struct {
	binary      string
	defaultUser string
}

type WSLDispatcherOptions struct {
	// Binary overrides the wsl executable, mainly for tests.
	Binary string
	// DefaultUser fills the {{user}} token when the distro does not
	// report one.
	DefaultUser string
}

func NewWSLDispatcher(opts WSLDispatcherOptions) *WSLDispatcher {
	binary := opts.Binary
	if binary == "" {
		if runtime.GOOS == "windows" {
			binary = "wsl.exe"
		} else {
			binary = "wsl"
		}
	}
	return &WSLDispatcher{binary: binary, defaultUser: opts.DefaultUser}
}

// ExecuteAction runs the interpolated command inside the distribution. A
// non-zero exit becomes a failed ActionResult, not an error; errors are
// reserved for failures to launch the wsl binary at all.
func (w *WSLDispatcher) ExecuteAction(ctx context.Context, req model.ExecuteRequest) (*model.ActionResult, error) {
	logger := ctxlog.From(ctx)

	args := []string{"-d", req.Distro, "--"}
	var stdin string
	if req.Credential != nil {
		// sudo -S reads the secret from stdin; -p "" suppresses the
		// prompt text so it does not pollute captured output.
		args = append(args, "sudo", "-S", "-p", "", "sh", "-c", req.Command)
		stdin = req.Credential.Secret + "\n"
	} else {
		args = append(args, "sh", "-c", req.Command)
	}

	cmd := exec.CommandContext(ctx, w.binary, args...) // #nosec G204 - command is from stored action data
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("dispatching command",
		slog.String("distro", req.Distro),
		slog.String("invocation", req.InvocationID),
	)

	err := cmd.Run()
	res := &model.ActionResult{
		Success:      err == nil,
		Output:       decodeWSLOutput(stdout.Bytes()),
		ActionID:     req.ActionID,
		Distro:       req.Distro,
		InvocationID: req.InvocationID,
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(decodeWSLOutput(stderr.Bytes()))
			if msg == "" {
				msg = err.Error()
			}
			res.Error = msg
			return res, nil
		}
		return nil, domain.ErrDispatch.Wrap(err)
	}
	return res, nil
}

// RunActionInTerminal launches the command in an interactive terminal and
// returns without waiting for it.
func (w *WSLDispatcher) RunActionInTerminal(ctx context.Context, req model.ExecuteRequest) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		args := []string{"wsl", "-d", req.Distro, "--", "sh", "-c", req.Command}
		cmd = exec.Command("wt.exe", args...) // #nosec G204 - command is from stored action data
	} else {
		inner := w.binary + " -d " + req.Distro + " -- sh -c " + shellQuote(req.Command)
		cmd = exec.Command("x-terminal-emulator", "-e", "sh", "-c", inner) // #nosec G204 - command is from stored action data
	}
	if err := cmd.Start(); err != nil {
		return domain.ErrDispatch.Wrap(err)
	}
	// Detach: the terminal owns the process from here.
	return cmd.Process.Release()
}

// List parses `wsl --list --verbose` output into distributions.
func (w *WSLDispatcher) List(ctx context.Context) ([]model.Distro, error) {
	out, err := w.run(ctx, "--list", "--verbose")
	if err != nil {
		return nil, err
	}
	return parseDistroList(out), nil
}

// IsRunning reports whether the distribution is currently running.
func (w *WSLDispatcher) IsRunning(ctx context.Context, distroName string) (bool, error) {
	distros, err := w.List(ctx)
	if err != nil {
		return false, err
	}
	for _, d := range distros {
		if d.Name == distroName {
			return d.Running(), nil
		}
	}
	return false, nil
}

// Context collects the interpolation values from inside the distribution.
func (w *WSLDispatcher) Context(ctx context.Context, distroName string) (model.DistroContext, error) {
	dc := model.DistroContext{Name: distroName, User: w.defaultUser}

	if home, err := w.inDistro(ctx, distroName, "echo $HOME"); err == nil {
		dc.Home = strings.TrimSpace(home)
	}
	if user, err := w.inDistro(ctx, distroName, "id -un"); err == nil && strings.TrimSpace(user) != "" {
		dc.User = strings.TrimSpace(user)
	}
	if winHome, err := w.inDistro(ctx, distroName, "wslpath \"$(cmd.exe /c 'echo %USERPROFILE%' 2>/dev/null)\" 2>/dev/null"); err == nil {
		dc.WinHome = strings.TrimSpace(winHome)
	}
	if dc.Home == "" && dc.User == "" {
		return dc, domain.ErrDispatch.Wrap(goerr.New("failed to resolve context for " + distroName))
	}
	return dc, nil
}

func (w *WSLDispatcher) inDistro(ctx context.Context, distroName, command string) (string, error) {
	return w.run(ctx, "-d", distroName, "--", "sh", "-c", command)
}

func (w *WSLDispatcher) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, w.binary, args...) // #nosec G204 - fixed argument set
	out, err := cmd.Output()
	if err != nil {
		return "", domain.ErrDispatch.Wrap(err)
	}
	return decodeWSLOutput(out), nil
}

// decodeWSLOutput strips the NUL bytes wsl.exe emits on Windows, where
// list output is UTF-16LE, and normalizes line endings.
func decodeWSLOutput(raw []byte) string {
	cleaned := bytes.ReplaceAll(raw, []byte{0x00}, nil)
	cleaned = bytes.TrimPrefix(cleaned, []byte{0xEF, 0xBB, 0xBF})
	return strings.ReplaceAll(string(cleaned), "\r\n", "\n")
}

// parseDistroList parses `wsl --list --verbose` output:
//
//	  NAME            STATE           VERSION
//	* Ubuntu-22.04    Running         2
//	  Debian          Stopped         2
func parseDistroList(out string) []model.Distro {
	var distros []model.Distro
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			continue
		}
		isDefault := strings.HasPrefix(line, "*")
		line = strings.TrimSpace(strings.TrimPrefix(line, "*"))

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		// Header row.
		if strings.EqualFold(fields[0], "NAME") {
			continue
		}
		distros = append(distros, model.Distro{
			Name:    fields[0],
			State:   model.DistroState(fields[1]),
			Default: isDefault,
		})
	}
	return distros
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
