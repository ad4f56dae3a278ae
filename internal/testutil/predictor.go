package testutil

import "context"

// FixedPredictor always predicts the same bit.
type FixedPredictor struct {
	Bit int
}

// Predict implements predict.Predictor.
func (p *FixedPredictor) Predict(context.Context, string, string) (int, error) {
	return p.Bit, nil
}
