package dvi

// The arithmetic and rounding model. DVI distances are 32-bit signed
// integers; conversion to pixels multiplies with the conv factor derived
// from the preamble. The rounding discipline follows DVItype: rules are
// rounded up so adjacent rules abut, horizontal spacing resynchronizes
// to the true coordinate only across thin-space thresholds, and position
// updates are clamped at ±(2³¹−1) rather than overflowing.

const infinity = 1<<31 - 1

// round rounds half away from zero, which is what the typesetter's own
// pixel computations do.
func round(f float64) int {
	if f > 0 {
		return int(f + 0.5)
	}
	return int(f - 0.5)
}

func abs(j int) int {
	if j < 0 {
		return -j
	}
	return j
}

// pixelRound converts a DVI distance to pixels.
func (m *machine) pixelRound(a int) int {
	return round(m.conv * float64(a))
}

// rulePixels returns the smallest integer n with n ≥ conv·x: the pixel
// extent of a rule of x DVI units.
func (m *machine) rulePixels(x int) int {
	n := int(m.conv * float64(x))
	if float64(n) < m.conv*float64(x) {
		return n + 1
	}
	return n
}

// clampRight guards h+q against overflow. If the sum would leave the
// 32-bit range, q is replaced by the largest legal motion and a
// diagnostic is emitted.
func (m *machine) clampRight(a, q int) int {
	if m.h > 0 && q > 0 && m.h > infinity-q {
		m.diag.warnf(a, "arithmetic overflow! parameter changed from %d to %d", q, infinity-m.h)
		return infinity - m.h
	}
	if m.h < 0 && q < 0 && -m.h > q+infinity {
		m.diag.warnf(a, "arithmetic overflow! parameter changed from %d to %d", q, -m.h-infinity)
		return -m.h - infinity
	}
	return q
}

func (m *machine) clampDown(a, p int) int {
	if m.v > 0 && p > 0 && m.v > infinity-p {
		m.diag.warnf(a, "arithmetic overflow! parameter changed from %d to %d", p, infinity-m.v)
		return infinity - m.v
	}
	if m.v < 0 && p < 0 && -m.v > p+infinity {
		m.diag.warnf(a, "arithmetic overflow! parameter changed from %d to %d", p, -m.v-infinity)
		return -m.v - infinity
	}
	return p
}

// moveRight sets h ← h+q with the overflow guard and the max-width
// bookkeeping. The pixel companion hh is the caller's concern: glyphs
// advance by their pixel width, rules by rulePixels, and spacing goes
// through outSpace. With MaxDrift enabled, hh is additionally pulled to
// within maxDrift pixels of the freshly rounded position.
func (m *machine) moveRight(a, q int) {
	q = m.clampRight(a, q)
	if m.maxDrift > 0 {
		hhh := m.pixelRound(m.h + q)
		if abs(hhh-m.hh) > m.maxDrift {
			if hhh > m.hh {
				m.hh = hhh - m.maxDrift
			} else {
				m.hh = hhh + m.maxDrift
			}
		}
	}
	m.h += q
	if abs(m.h) > m.maxHSoFar {
		if abs(m.h) > m.maxH+99 {
			m.diag.warnf(a, "warning: |h|>%d!", m.maxH)
			m.maxH = abs(m.h)
		}
		m.maxHSoFar = abs(m.h)
	}
}

// moveDown sets v ← v+p. Unlike moveRight it owns the pixel companion:
// motions of at least five thin spaces resynchronize vv to the true
// coordinate, smaller ones accumulate rounded increments to avoid
// visible jitter.
func (m *machine) moveDown(a, p int) {
	if abs(p) >= 5*m.curFont.space() {
		m.vv = m.pixelRound(m.v + p)
	} else {
		m.vv += m.pixelRound(p)
	}
	p = m.clampDown(a, p)
	if m.maxDrift > 0 {
		vvv := m.pixelRound(m.v + p)
		if abs(vvv-m.vv) > m.maxDrift {
			if vvv > m.vv {
				m.vv = vvv - m.maxDrift
			} else {
				m.vv = vvv + m.maxDrift
			}
		}
	}
	m.v += p
	if abs(m.v) > m.maxVSoFar {
		if abs(m.v) > m.maxV+99 {
			m.diag.warnf(a, "warning: |v|>%d!", m.maxV)
			m.maxV = abs(m.v)
		}
		m.maxVSoFar = abs(m.v)
	}
}

// outSpace updates hh for a horizontal motion by p, then moves right.
// The threshold is asymmetric: a backspace must be four thin spaces wide
// before hh resynchronizes, accommodating the large negative kerns that
// accents produce.
func (m *machine) outSpace(a, p int) {
	if p >= m.curFont.space() || p <= -4*m.curFont.space() {
		m.hh = m.pixelRound(m.h + p)
	} else {
		m.hh += m.pixelRound(p)
	}
	m.moveRight(a, p)
}
