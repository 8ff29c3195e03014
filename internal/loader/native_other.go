//go:build !windows && !((darwin || freebsd || linux) && !android)

package loader

import (
	"fmt"
	"runtime"
)

func openAndClose(path string) error {
	return fmt.Errorf("loading shared libraries is not supported on %s", runtime.GOOS)
}
