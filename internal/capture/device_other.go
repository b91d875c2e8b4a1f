//go:build !linux || !(amd64 || arm64 || arm)

package capture

func openDevice(string, int) (Source, error) {
	return nil, ErrUnsupported
}
