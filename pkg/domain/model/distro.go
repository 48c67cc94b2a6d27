package model

// DistroState mirrors the states reported by the WSL service.
type DistroState string

const (
	DistroRunning    DistroState = "Running"
	DistroStopped    DistroState = "Stopped"
	DistroInstalling DistroState = "Installing"
)

// Distro is one managed distribution as listed by the platform.
type Distro struct {
	Name    string
	State   DistroState
	Default bool
}

func (d Distro) Running() bool {
	return d.State == DistroRunning
}

// DistroContext supplies the per-invocation values used for command
// interpolation. It is sourced from distribution metadata by the
// DistroService collaborator.
type DistroContext struct {
	Name    string
	Home    string
	User    string
	WinHome string
}
