package control

import "github.com/san-kum/quadsim/internal/dynamo"

// Leveler is a state-feedback attitude loop. The state is (roll, pitch,
// roll accel rate, pitch accel rate); K maps it to a roll and a pitch
// correction that are split across opposite rotor pairs on top of the
// command from Base.
type Leveler struct {
	K    [2][4]float64
	Base dynamo.Controller
}

var levelGains = [2][4]float64{
	{2.0, 0, 1.0, 0},
	{0, 2.0, 0, 1.0},
}

func NewLeveler(base dynamo.Controller) *Leveler {
	return &Leveler{K: levelGains, Base: base}
}

func (l *Leveler) Compute(s dynamo.Snapshot) dynamo.Thrust {
	var t dynamo.Thrust
	if l.Base != nil {
		t = l.Base.Compute(s)
	}

	x := [4]float64{s.Roll(), s.Pitch(), s.OrientationAccelRate.X(), s.OrientationAccelRate.Z()}
	var u [2]float64
	for i := range u {
		for j := range x {
			u[i] -= l.K[i][j] * x[j]
		}
	}

	// the +z rotor rolls negative, the +x rotor pitches positive
	roll, pitch := u[0]/2, u[1]/2
	t[0] += pitch
	t[1] -= roll
	t[2] -= pitch
	t[3] += roll
	return t
}

func (l *Leveler) Reset() {
	if r, ok := l.Base.(dynamo.Resettable); ok {
		r.Reset()
	}
}
