package libav

import "github.com/user/lanecrop/pkg/ports"

// Factory opens libav components with component-scoped loggers.
type Factory struct {
	logger ports.Logger
}

// NewFactory creates a Factory. Init must have been called.
func NewFactory(logger ports.Logger) *Factory {
	return &Factory{logger: logger}
}

func (f *Factory) OpenDecoder(path string) (ports.Decoder, error) {
	d, err := OpenDecoder(path, f.logger.WithComponent("decoder"))
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (f *Factory) BuildRouter(spec ports.RouterSpec) (ports.FrameRouter, error) {
	r, err := BuildRouter(spec, f.logger.WithComponent("router"))
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (f *Factory) OpenEncoder(path string, opts ports.EncoderOptions) (ports.LaneEncoder, error) {
	e, err := OpenEncoder(path, opts, f.logger.WithComponent("encoder"))
	if err != nil {
		return nil, err
	}
	return e, nil
}

var _ ports.MediaFactory = (*Factory)(nil)
