// Package drift provides concept drift detection for streaming learners.
package drift

import (
	"math"
	"sync"
)

// DDM (Drift Detection Method) monitors a stream of prediction outcomes
// and signals when the error rate rises significantly above its historical
// minimum. Proposed in J. Gama, P. Medas, G. Castillo, P. Rodrigues (2004)
// "Learning with Drift Detection".
type DDM struct {
	// Hyperparameters
	minNumInstances int     // Minimum number of instances before detection
	warningLevel    float64 // Warning level (in standard deviations)
	outControlLevel float64 // Out of control level (in standard deviations)

	// Statistics
	numInstances int
	numErrors    int
	errorRate    float64
	stdDev       float64

	// Reference values (minimum observed since learning start)
	minErrorRate float64
	minStdDev    float64

	// State
	warningDetected bool
	driftDetected   bool

	mu sync.RWMutex
}

// DriftDetectionResult represents the result of a single detector update.
type DriftDetectionResult struct {
	WarningDetected bool    // Whether the warning level was crossed
	DriftDetected   bool    // Whether the drift level was crossed
	ErrorRate       float64 // Current error rate
	ConfidenceLevel float64 // Current level relative to the reference minimum
}

// NewDDM creates a new DDM instance.
func NewDDM(options ...DDMOption) *DDM {
	ddm := &DDM{
		minNumInstances: 30,
		warningLevel:    2.0, // μ + 2σ
		outControlLevel: 3.0, // μ + 3σ
		minErrorRate:    math.Inf(1),
		minStdDev:       math.Inf(1),
	}

	for _, opt := range options {
		opt(ddm)
	}

	return ddm
}

// DDMOption is a DDM configuration option.
type DDMOption func(*DDM)

// WithDDMMinNumInstances sets the minimum number of samples before detection.
func WithDDMMinNumInstances(n int) DDMOption {
	return func(ddm *DDM) {
		ddm.minNumInstances = n
	}
}

// WithDDMWarningLevel sets the warning level.
func WithDDMWarningLevel(level float64) DDMOption {
	return func(ddm *DDM) {
		ddm.warningLevel = level
	}
}

// WithDDMOutControlLevel sets the out-of-control level.
func WithDDMOutControlLevel(level float64) DDMOption {
	return func(ddm *DDM) {
		ddm.outControlLevel = level
	}
}

// Update feeds one prediction outcome into the detector.
// correct reports whether the model predicted the true label.
func (ddm *DDM) Update(correct bool) *DriftDetectionResult {
	ddm.mu.Lock()
	defer ddm.mu.Unlock()

	ddm.numInstances++
	if !correct {
		ddm.numErrors++
	}

	// Too few samples for the binomial approximation to be meaningful.
	if ddm.numInstances < ddm.minNumInstances {
		return &DriftDetectionResult{
			WarningDetected: false,
			DriftDetected:   false,
			ErrorRate:       0,
			ConfidenceLevel: 0,
		}
	}

	ddm.errorRate = float64(ddm.numErrors) / float64(ddm.numInstances)
	ddm.stdDev = math.Sqrt(ddm.errorRate * (1.0 - ddm.errorRate) / float64(ddm.numInstances))

	result := &DriftDetectionResult{
		ErrorRate: ddm.errorRate,
	}

	// Track the best (lowest) operating point seen so far.
	currentLevel := ddm.errorRate + ddm.stdDev
	if currentLevel < (ddm.minErrorRate + ddm.minStdDev) {
		ddm.minErrorRate = ddm.errorRate
		ddm.minStdDev = ddm.stdDev
	}

	if ddm.minStdDev > 0 {
		result.ConfidenceLevel = (ddm.errorRate + ddm.stdDev) / (ddm.minErrorRate + ddm.minStdDev)
	} else {
		result.ConfidenceLevel = 1.0
	}

	warningThreshold := ddm.minErrorRate + ddm.warningLevel*ddm.minStdDev
	if ddm.errorRate+ddm.stdDev > warningThreshold {
		ddm.warningDetected = true
		result.WarningDetected = true
	} else {
		ddm.warningDetected = false
	}

	driftThreshold := ddm.minErrorRate + ddm.outControlLevel*ddm.minStdDev
	if ddm.errorRate+ddm.stdDev > driftThreshold {
		ddm.driftDetected = true
		result.DriftDetected = true
		// Statistics restart from scratch after a confirmed drift.
		ddm.resetLocked()
	} else {
		ddm.driftDetected = false
	}

	return result
}

// Reset clears all statistics and reference values.
func (ddm *DDM) Reset() {
	ddm.mu.Lock()
	defer ddm.mu.Unlock()
	ddm.resetLocked()
}

func (ddm *DDM) resetLocked() {
	ddm.numInstances = 0
	ddm.numErrors = 0
	ddm.errorRate = 0
	ddm.stdDev = 0
	ddm.minErrorRate = math.Inf(1)
	ddm.minStdDev = math.Inf(1)
	ddm.warningDetected = false
	ddm.driftDetected = false
}

// GetStatistics returns a snapshot of the detector state.
func (ddm *DDM) GetStatistics() DDMStatistics {
	ddm.mu.RLock()
	defer ddm.mu.RUnlock()

	return DDMStatistics{
		NumInstances:    ddm.numInstances,
		NumErrors:       ddm.numErrors,
		ErrorRate:       ddm.errorRate,
		StdDev:          ddm.stdDev,
		MinErrorRate:    ddm.minErrorRate,
		MinStdDev:       ddm.minStdDev,
		WarningDetected: ddm.warningDetected,
		DriftDetected:   ddm.driftDetected,
	}
}

// DDMStatistics is a snapshot of DDM internals.
type DDMStatistics struct {
	NumInstances    int
	NumErrors       int
	ErrorRate       float64
	StdDev          float64
	MinErrorRate    float64
	MinStdDev       float64
	WarningDetected bool
	DriftDetected   bool
}

// Detector is the interface consumed by training loops that feed
// per-prediction outcomes into a drift monitor.
type Detector interface {
	Update(correct bool) *DriftDetectionResult
	Reset()
}

var _ Detector = (*DDM)(nil)
