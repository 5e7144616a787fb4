package galaxy

import (
	"errors"
	"math"

	apperrors "galaxy-server/internal/shared/errors"
)

// ErrInvalidArgument is wrapped by every quantile domain error.
var ErrInvalidArgument = errors.New("probability outside (0, 1)")

// Coefficients of Acklam's rational approximation, rounded to 15 significant
// digits. Outputs depend on these exact values.
const (
	qa1 = -39.6968302866538
	qa2 = 220.946098424521
	qa3 = -275.928510446969
	qa4 = 138.357751867269
	qa5 = -30.6647980661472
	qa6 = 2.50662827745924

	qb1 = -54.4760987982241
	qb2 = 161.585836858041
	qb3 = -155.698979859887
	qb4 = 66.8013118877197
	qb5 = -13.2806815528857

	qc1 = -7.78489400243029e-3
	qc2 = -0.322396458041136
	qc3 = -2.40075827716184
	qc4 = -2.54973253934373
	qc5 = 4.37466414146497
	qc6 = 2.93816398269878

	qd1 = 7.78469570904146e-3
	qd2 = 0.32246712907004
	qd3 = 2.445134137143
	qd4 = 3.75440866190742

	pLow  float64 = 0.02425
	pHigh         = 1 - pLow
)

// Quantile returns z such that Φ(z) = p for the standard normal distribution.
// p must lie in the open interval (0, 1).
func Quantile(p float64) (float64, error) {
	if !(p > 0 && p < 1) {
		return 0, apperrors.InvalidArgument(ErrInvalidArgument, "quantile of p=%v", p)
	}

	switch {
	case p < pLow:
		return lowerTail(math.Sqrt(-2 * math.Log(p))), nil
	case p <= pHigh:
		q := p - 0.5
		r := q * q
		return (((((qa1*r+qa2)*r+qa3)*r+qa4)*r+qa5)*r + qa6) * q /
			(((((qb1*r+qb2)*r+qb3)*r+qb4)*r+qb5)*r + 1), nil
	default:
		return -lowerTail(math.Sqrt(-2 * math.Log(1-p))), nil
	}
}

func lowerTail(q float64) float64 {
	return (((((qc1*q+qc2)*q+qc3)*q+qc4)*q+qc5)*q + qc6) /
		((((qd1*q+qd2)*q+qd3)*q+qd4)*q + 1)
}
