//go:build !linux

package cmd

import "errors"

func captureStatusPath(string) (string, error) {
	return "", errors.ErrUnsupported
}

func listPCMRows() ([][]string, error) {
	return nil, errors.ErrUnsupported
}
