package update

import "fmt"

type State int

const (
	StateIdle State = iota
	StateChecking
	StateNoUpdate
	StateUpdateAvailable
	StateDownloading
	StateReadyToInstall
	StateInstalling
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateChecking:
		return "checking"
	case StateNoUpdate:
		return "no-update"
	case StateUpdateAvailable:
		return "update-available"
	case StateDownloading:
		return "downloading"
	case StateReadyToInstall:
		return "ready-to-install"
	case StateInstalling:
		return "installing"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Status is the observable state of the updater. Version is set for
// StateUpdateAvailable, Progress (0..1) for StateDownloading and Message for
// StateFailed.
type Status struct {
	State    State
	Version  string
	Progress float64
	Message  string
}

// Text renders the status for the settings window.
func (s Status) Text() string {
	switch s.State {
	case StateIdle:
		return ""
	case StateChecking:
		return "Checking for updates..."
	case StateNoUpdate:
		return "You're up to date"
	case StateUpdateAvailable:
		return fmt.Sprintf("Version %s available", s.Version)
	case StateDownloading:
		return fmt.Sprintf("Downloading... %d%%", int(s.Progress*100))
	case StateReadyToInstall:
		return "Ready to install"
	case StateInstalling:
		return "Installing..."
	case StateFailed:
		return s.Message
	}
	return s.State.String()
}

// Busy reports whether an operation is in flight.
func (s Status) Busy() bool {
	switch s.State {
	case StateChecking, StateDownloading, StateInstalling:
		return true
	}
	return false
}
