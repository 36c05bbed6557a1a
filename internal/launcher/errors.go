package launcher

import (
	"fmt"

	"github.com/killuox/koi-launcher/internal/platform"
)

// BinaryNotFoundError reports that the resolved koi binary does not exist.
// No spawn was attempted.
type BinaryNotFoundError struct {
	Path     string
	Platform platform.Key
}

func (e *BinaryNotFoundError) Error() string {
	return fmt.Sprintf("koi binary for %s not found at %s", e.Platform, e.Path)
}

// SpawnError reports that the OS refused to start the koi binary.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}
