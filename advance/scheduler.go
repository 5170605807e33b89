package advance

// updateTicks returns the cycles until the nearest pending event: the end
// of the LCD phase, a timer overflow, the end of a BIOS call's charge or
// the interrupt latency.
func (m *Machine) updateTicks() int {
	next := m.lcdTicks
	for n := range m.timers {
		t := &m.timers[n]
		if t.on && (n == 0 || !t.cascade()) && t.ticks < next {
			next = t.ticks
		}
	}
	if m.swiTicks != 0 && m.swiTicks < next {
		next = m.swiTicks
	}
	if m.irqTicks != 0 && m.irqTicks < next {
		next = m.irqTicks
	}
	return next
}

// run executes up to ticks master clocks, stopping early at the end of a
// frame. Instructions run back to back until the next event is due; the
// event pass then replays the elapsed cycles against the LCD, the timers,
// pending DMA cost and the interrupt latency.
func (m *Machine) run(ticks int) {
	m.totalTicks = 0
	m.breakLoop = false
	m.nextEvent = min(m.updateTicks(), ticks)

	for {
		clockTicks := 0
		if !m.holdState && m.swiTicks == 0 {
			for {
				m.totalTicks += m.cpu.Step()
				if m.totalTicks >= m.nextEvent || m.holdState || m.swiTicks != 0 {
					break
				}
			}
		} else {
			clockTicks = m.updateTicks()
		}

		m.totalTicks += clockTicks
		if m.totalTicks < m.nextEvent {
			continue
		}

		remaining := m.totalTicks - m.nextEvent
		if m.swiTicks != 0 {
			m.swiTicks = max(m.swiTicks-clockTicks, 0)
		}
		clockTicks = m.nextEvent
		m.totalTicks = 0
		m.dmaHack = false

		for {
			ticks -= m.advance(clockTicks)

			if m.dmaTicks > 0 {
				clockTicks = min(m.dmaTicks, m.nextEvent)
				m.dmaTicks -= clockTicks
				m.dmaHack = true
				continue
			}

			m.serviceInterrupts()

			if remaining > 0 {
				clockTicks = min(remaining, m.nextEvent)
				remaining -= clockTicks
				continue
			}
			break
		}

		m.applyTimers()
		m.nextEvent = min(m.nextEvent, ticks)
		if ticks <= 0 || m.breakLoop {
			return
		}
	}
}

// advance moves the devices forward by clockTicks and recomputes the next
// event. It returns clockTicks for the caller's budget.
func (m *Machine) advance(clockTicks int) int {
	if m.irqTicks != 0 {
		m.irqTicks = max(m.irqTicks-clockTicks, 0)
	}
	m.soundTS += clockTicks
	m.lcdTicks -= clockTicks
	if m.lcdTicks <= 0 {
		m.runLCD()
	}
	if !m.stopState {
		m.runTimers(clockTicks)
	}
	m.nextEvent = m.updateTicks()
	return clockTicks
}

// Emulate runs until the next frame is complete, with keys held for its
// duration. It returns the number of stereo sample frames produced, which
// Samples exposes until the next call.
func (m *Machine) Emulate(keys uint16) int {
	m.keys = keys
	m.frameReady = false

	for !m.frameReady && m.soundTS < sampleBudget {
		m.run(sampleBudget)
	}

	if m.rtc != nil {
		m.rtc.AddTime(m.soundTS)
	}
	n := m.sound.Flush(m.soundTS, m.samples)
	m.soundTS = 0
	m.sampleFrames = n
	return n
}

// Samples returns the interleaved stereo samples of the last Emulate call.
func (m *Machine) Samples() []int16 {
	return m.samples[:m.sampleFrames*2]
}

// FrameReady reports whether the last Emulate call completed a frame.
func (m *Machine) FrameReady() bool {
	return m.frameReady
}
