//go:build windows

package internal

import "os"

func Detach() (*os.Process, error) {
	return nil, ErrDetachUnsupported
}
