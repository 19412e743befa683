package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDoubleTapTiming(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		gap      time.Duration
		isDouble bool
	}{
		{name: "299ms apart is a double tap", gap: 299 * time.Millisecond, isDouble: true},
		{name: "exactly 300ms apart is not", gap: 300 * time.Millisecond, isDouble: false},
		{name: "301ms apart is not", gap: 301 * time.Millisecond, isDouble: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector()

			first := d.Handle(Event{Zone: "post-1", Kind: KindTouch, At: base})
			assert.False(t, first.QuickReact)

			second := d.Handle(Event{Zone: "post-1", Kind: KindTouch, At: base.Add(tt.gap)})
			assert.Equal(t, tt.isDouble, second.QuickReact)
		})
	}
}

func TestConsumedTimestampDoesNotChain(t *testing.T) {
	d := NewDetector()
	base := time.Now()

	d.Handle(Event{Zone: "z", Kind: KindMouse, At: base})
	second := d.Handle(Event{Zone: "z", Kind: KindMouse, At: base.Add(100 * time.Millisecond)})
	assert.True(t, second.QuickReact)

	// The second tap consumed the timestamp, so a rapid third tap only
	// arms a new window.
	third := d.Handle(Event{Zone: "z", Kind: KindMouse, At: base.Add(200 * time.Millisecond)})
	assert.False(t, third.QuickReact)

	fourth := d.Handle(Event{Zone: "z", Kind: KindMouse, At: base.Add(250 * time.Millisecond)})
	assert.True(t, fourth.QuickReact)
}

func TestZonesAreIndependent(t *testing.T) {
	d := NewDetector()
	base := time.Now()

	d.Handle(Event{Zone: "post-1", Kind: KindTouch, At: base})
	other := d.Handle(Event{Zone: "post-2", Kind: KindTouch, At: base.Add(50 * time.Millisecond)})

	// A rapid tap on a different entity must not complete the pair.
	assert.False(t, other.QuickReact)

	same := d.Handle(Event{Zone: "post-1", Kind: KindTouch, At: base.Add(100 * time.Millisecond)})
	assert.True(t, same.QuickReact)
}

func TestPinchSuppressesDetection(t *testing.T) {
	d := NewDetector()
	base := time.Now()

	d.TouchStart("z", 2)
	end := d.Handle(Event{Zone: "z", Kind: KindTouch, At: base})
	assert.False(t, end.QuickReact, "pinch end must not quick-react")

	// The pinch flag clears with the touch end; detection resumes.
	d.Handle(Event{Zone: "z", Kind: KindTouch, At: base.Add(100 * time.Millisecond)})
	resumed := d.Handle(Event{Zone: "z", Kind: KindTouch, At: base.Add(200 * time.Millisecond)})
	assert.True(t, resumed.QuickReact)
}

func TestSingleTouchStartDoesNotArmPinch(t *testing.T) {
	d := NewDetector()
	base := time.Now()

	d.TouchStart("z", 1)
	d.Handle(Event{Zone: "z", Kind: KindTouch, At: base})
	second := d.Handle(Event{Zone: "z", Kind: KindTouch, At: base.Add(100 * time.Millisecond)})
	assert.True(t, second.QuickReact)
}

func TestPreventDefault(t *testing.T) {
	d := NewDetector()
	now := time.Now()

	touch := d.Handle(Event{Zone: "z", Kind: KindTouch, At: now})
	assert.True(t, touch.PreventDefault, "touch must suppress synthetic click and zoom")

	mouse := d.Handle(Event{Zone: "m", Kind: KindMouse, At: now})
	assert.False(t, mouse.PreventDefault)
}
