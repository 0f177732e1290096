package io

// Recorder remembers every notification.
type Recorder struct {
	Bells   int   // Number of bells rung.
	Printed []int // Values printed, in order.
}

func (rec *Recorder) Bell() {
	rec.Bells++
}

func (rec *Recorder) Print(value int) {
	rec.Printed = append(rec.Printed, value)
}

// Reset forgets all notifications.
func (rec *Recorder) Reset() {
	rec.Bells = 0
	rec.Printed = nil
}

// Tee sends every notification to each of its notifiers in turn.
type Tee []Notifier

func (tee Tee) Bell() {
	for _, n := range tee {
		n.Bell()
	}
}

func (tee Tee) Print(value int) {
	for _, n := range tee {
		n.Print(value)
	}
}
