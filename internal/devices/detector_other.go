//go:build !linux || !(amd64 || arm64 || arm)

package devices

type stubDetector struct{}

func newDetector() Detector {
	return stubDetector{}
}

func (stubDetector) FindDevices() ([]DeviceInfo, error) {
	return nil, nil
}

func (stubDetector) GetDeviceFormats(string) ([]FormatInfo, error) {
	return nil, ErrUnsupported
}

func (stubDetector) GetDeviceResolutions(string, uint32) ([]Resolution, error) {
	return nil, ErrUnsupported
}
