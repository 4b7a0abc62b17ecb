package rnnoise

import (
	"github.com/xaionaro-go/denoise/pkg/noisesuppression"
)

type Factory struct{}

var _ noisesuppression.Factory = (*Factory)(nil)

func (Factory) NewNoiseSuppressor() (noisesuppression.NoiseSuppressor, error) {
	suppressor, err := New()
	if err != nil {
		return nil, err
	}
	return suppressor, nil
}

func init() {
	noisesuppression.RegisterFactory(100, Factory{})
}
