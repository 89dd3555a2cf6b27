package control

import "github.com/san-kum/quadsim/internal/dynamo"

const DefaultMaxThrust = 10.0

// PID is a scalar PID loop on an error signal sampled at time t.
type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd float64) *PID {
	return &PID{
		Kp:    kp,
		Ki:    ki,
		Kd:    kd,
		first: true,
	}
}

func (p *PID) Update(err, t float64) float64 {
	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return p.Kp * err
	}

	dt := t - p.prevT
	if dt > 0 {
		p.integral += err * dt
		derivative := (err - p.prevErr) / dt

		u := p.Kp*err + p.Ki*p.integral + p.Kd*derivative

		p.prevErr = err
		p.prevT = t

		return u
	}
	return p.Kp * err
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.prevT = 0
	p.first = true
}

// AltitudeHold drives the vehicle to Target altitude with symmetric thrust.
// The PID output is a vertical acceleration added to gravity, so a perfect
// hover needs no integral term.
type AltitudeHold struct {
	PID       *PID
	Target    float64
	Gravity   float64
	MaxThrust float64
}

func NewAltitudeHold(kp, ki, kd, target, gravity float64) *AltitudeHold {
	return &AltitudeHold{
		PID:       NewPID(kp, ki, kd),
		Target:    target,
		Gravity:   gravity,
		MaxThrust: DefaultMaxThrust,
	}
}

func (a *AltitudeHold) Compute(s dynamo.Snapshot) dynamo.Thrust {
	accel := a.PID.Update(a.Target-s.Altitude(), s.Time)
	per := s.Mass * (a.Gravity + accel) / 4
	if per < 0 {
		per = 0
	}
	if a.MaxThrust > 0 && per > a.MaxThrust {
		per = a.MaxThrust
	}
	return dynamo.Thrust{per, per, per, per}
}

func (a *AltitudeHold) Reset() { a.PID.Reset() }

// GetParams returns tunable parameters for live adjustment
func (a *AltitudeHold) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":     a.PID.Kp,
		"Ki":     a.PID.Ki,
		"Kd":     a.PID.Kd,
		"Target": a.Target,
	}
}

// SetParam adjusts a gain or the target altitude
func (a *AltitudeHold) SetParam(name string, value float64) {
	switch name {
	case "Kp":
		a.PID.Kp = value
	case "Ki":
		a.PID.Ki = value
	case "Kd":
		a.PID.Kd = value
	case "Target":
		a.Target = value
	}
}
