//go:build windows

package doctor

import (
	"fmt"
	"path/filepath"
	"strings"
)

// executable reports whether Windows will treat path as a program. There
// are no execute bits; the extension decides.
func executable(path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".exe") {
		return fmt.Errorf("%s does not have an .exe extension", path)
	}

	return nil
}
