package actuator

// 19.2 MHz / 19 / 20000 gives a ~50 Hz frame, so PWM values are roughly
// microseconds of pulse width.
const (
	servoRange    = 20000
	servoMinPulse = 1000
	servoMaxPulse = 2000
)

// pwmWriter is the part of the PWM block a servo output drives.
type pwmWriter interface {
	Pwm0Set(value uint32)
	Pwm1Set(value uint32)
	Close() error
}

// Servo implements Output using a hardware PWM channel. Start jumps to the
// open position and End jumps back to rest; neither sweeps nor sleeps, so
// both are safe to call from the polling loop.
type Servo struct {
	hw      pwmWriter
	channel int
	openPos int
	restPos int
}

// NewServo creates a servo output on PWM channel 0 or 1 and parks it at rest.
func NewServo(hw pwmWriter, channel, openPos, restPos int) (*Servo, error) {
	s := &Servo{
		hw:      hw,
		channel: channel,
		openPos: openPos,
		restPos: restPos,
	}
	s.moveTo(restPos)
	return s, nil
}

// Start implements Output.Start.
func (s *Servo) Start() error {
	s.moveTo(s.openPos)
	return nil
}

// End implements Output.End.
func (s *Servo) End() error {
	s.moveTo(s.restPos)
	return nil
}

// Release implements Output.Release.
func (s *Servo) Release() error {
	return s.hw.Close()
}

func (s *Servo) moveTo(pos int) {
	if s.channel == 1 {
		s.hw.Pwm1Set(uint32(pos))
	} else {
		s.hw.Pwm0Set(uint32(pos))
	}
}

// AngleToPWM converts a 0-180 degree angle to a PWM value in the 1-2 ms
// pulse band. Out-of-range angles are clamped.
func AngleToPWM(angle int) int {
	if angle < 0 {
		angle = 0
	}
	if angle > 180 {
		angle = 180
	}
	return servoMinPulse + angle*(servoMaxPulse-servoMinPulse)/180
}
