package controller

// Normalize converts a raw axis value into the configured output range.
//
// Sticks are symmetric (output_min < 0): the value is scaled against the
// larger half of the deadzone-reduced range so both extremes reach the
// output bounds. Triggers are asymmetric: a plain linear map over the
// effective range. Axes without a mapping or with normalize=false pass
// through as a plain float.
func (c *Config) Normalize(code uint16, raw int32) float64 {
	m, ok := c.axes[code]
	if !ok || !m.Normalize {
		return float64(raw)
	}

	value := raw
	symmetric := m.OutputMin < 0
	deadzone := c.Norm.ApplyDeadzone && m.Deadzone > 0

	if deadzone {
		if abs32(value) <= m.Deadzone {
			if symmetric {
				return 0.0
			}
			return m.OutputMin
		}
		// shrink toward zero so the output is continuous at the deadzone edge
		if value > 0 {
			value -= m.Deadzone
		} else {
			value += m.Deadzone
		}
	}

	if value < m.Min {
		value = m.Min
	}
	if value > m.Max {
		value = m.Max
	}

	emax, emin := m.Max, m.Min
	if deadzone {
		emax = m.Max - m.Deadzone
		emin = m.Min + m.Deadzone
	}

	outputRange := m.OutputMax - m.OutputMin

	if symmetric {
		maxAbs := emax
		if maxAbs < 0 {
			maxAbs = -maxAbs
		}
		if other := abs32(emin); other > maxAbs {
			maxAbs = other
		}
		if maxAbs == 0 {
			return 0.0
		}
		n := float64(value) / float64(maxAbs)
		if n < -1.0 {
			n = -1.0
		}
		if n > 1.0 {
			n = 1.0
		}
		return m.OutputMin + ((n+1.0)/2.0)*outputRange
	}

	effectiveRange := float64(emax - emin)
	if effectiveRange == 0 {
		return m.OutputMin
	}
	n := float64(value-emin) / effectiveRange
	if n < 0.0 {
		n = 0.0
	}
	if n > 1.0 {
		n = 1.0
	}
	return m.OutputMin + n*outputRange
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
