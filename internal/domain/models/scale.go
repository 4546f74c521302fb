package models

// ScaleHint declares the native range of a raw analyzer score.
type ScaleHint string

const (
	// ScaleBipolar is the [-1, 1] range.
	ScaleBipolar ScaleHint = "bipolar"
	// ScaleUnit is the [0, 1] range.
	ScaleUnit ScaleHint = "unit"
)

// IsValidScale returns true if s is a supported scale hint.
func IsValidScale(s ScaleHint) bool {
	switch s {
	case ScaleBipolar, ScaleUnit:
		return true
	default:
		return false
	}
}

// DefaultScale returns the default scale hint.
func DefaultScale() ScaleHint { return ScaleBipolar }

// NormalizeScale converts a raw string to a valid scale hint (or default).
func NormalizeScale(s string) ScaleHint {
	if s == "" {
		return DefaultScale()
	}
	h := ScaleHint(s)
	if IsValidScale(h) {
		return h
	}
	return DefaultScale()
}
