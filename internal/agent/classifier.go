package agent

import (
	"errors"
	"math"
	"time"
)

// standardScaler normalizes features to zero mean and unit variance.
type standardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

func (s *standardScaler) fit(x [][]float64) {
	n := len(x)
	dims := len(x[0])
	s.Mean = make([]float64, dims)
	s.Std = make([]float64, dims)

	for _, row := range x {
		for j, v := range row {
			s.Mean[j] += v
		}
	}
	for j := range s.Mean {
		s.Mean[j] /= float64(n)
	}
	for _, row := range x {
		for j, v := range row {
			d := v - s.Mean[j]
			s.Std[j] += d * d
		}
	}
	for j := range s.Std {
		s.Std[j] = math.Sqrt(s.Std[j] / float64(n))
		if s.Std[j] == 0 {
			s.Std[j] = 1 // constant feature, leave centered values at zero
		}
	}
}

func (s *standardScaler) transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, errors.New("feature dimension mismatch")
	}
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out, nil
}

// logisticClassifier is a binary win/loss classifier trained with batch
// gradient descent on scaled features.
type logisticClassifier struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

const (
	trainEpochs       = 300
	trainLearningRate = 0.1
)

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

func (c *logisticClassifier) fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return errors.New("inconsistent training set")
	}
	dims := len(x[0])
	c.Weights = make([]float64, dims)
	c.Bias = 0

	n := float64(len(x))
	for epoch := 0; epoch < trainEpochs; epoch++ {
		gradW := make([]float64, dims)
		gradB := 0.0
		for i, row := range x {
			p := sigmoid(c.dot(row))
			diff := p - y[i]
			for j, v := range row {
				gradW[j] += diff * v
			}
			gradB += diff
		}
		for j := range c.Weights {
			c.Weights[j] -= trainLearningRate * gradW[j] / n
		}
		c.Bias -= trainLearningRate * gradB / n
	}
	return nil
}

// predictProba returns the win probability for scaled features.
func (c *logisticClassifier) predictProba(x []float64) (float64, error) {
	if len(x) != len(c.Weights) {
		return 0, errors.New("feature dimension mismatch")
	}
	return sigmoid(c.dot(x)), nil
}

func (c *logisticClassifier) dot(x []float64) float64 {
	z := c.Bias
	for j, v := range x {
		z += c.Weights[j] * v
	}
	return z
}

// modelState is the versioned persistence blob for scaler + classifier.
type modelState struct {
	Version    int                `json:"version"`
	Scaler     standardScaler     `json:"scaler"`
	Classifier logisticClassifier `json:"classifier"`
	Samples    int                `json:"samples"`
	TrainedAt  time.Time          `json:"trained_at"`
}
