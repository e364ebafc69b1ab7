package testevents

import "time"

// Defaults for a generated session.
const (
	DefaultStrokes         = 3
	DefaultPointsPerStroke = 8
	DefaultFrames          = 12
	DefaultFrameRate       = 24.0
	DefaultStep            = 40 * time.Millisecond
)

// DefaultMedia is the clip list used when Config.Media is empty.
var DefaultMedia = []string{
	"/mnt/demo/seq010/sh0010/comp/sh0010_comp_v003.mov",
	"/mnt/demo/seq010/sh0020/anim/sh0020_anim_v001.mov",
}

// Config holds configuration for a generated review session
type Config struct {
	Strokes         int           // Number of annotation strokes
	PointsPerStroke int           // PaintPoints between each start and end
	Frames          int           // SetCurrentFrame events per clip
	FrameRate       float64       // Rate of the generated frame times
	Media           []string      // Clip paths, switched to in order
	Start           time.Time     // Timestamp of the first event; zero means now
	Step            time.Duration // Gap between consecutive timestamps
	Verify          bool          // Read the log back after the run
}

// DefaultConfig returns a small session touching every event kind.
func DefaultConfig() *Config {
	return &Config{
		Strokes:         DefaultStrokes,
		PointsPerStroke: DefaultPointsPerStroke,
		Frames:          DefaultFrames,
		FrameRate:       DefaultFrameRate,
		Media:           append([]string(nil), DefaultMedia...),
		Step:            DefaultStep,
	}
}

func (c *Config) normalize() {
	if c.Strokes < 0 {
		c.Strokes = 0
	}
	if c.PointsPerStroke < 0 {
		c.PointsPerStroke = 0
	}
	if c.Frames < 0 {
		c.Frames = 0
	}
	if c.FrameRate <= 0 {
		c.FrameRate = DefaultFrameRate
	}
	if len(c.Media) == 0 {
		c.Media = append([]string(nil), DefaultMedia...)
	}
	if c.Step <= 0 {
		c.Step = DefaultStep
	}
	if c.Start.IsZero() {
		c.Start = time.Now().UTC()
	}
}

// Stats holds run statistics
type Stats struct {
	EventsGenerated int
	EventsEmitted   int
	EventsRejected  int
	EventsRetried   int
	EventsVerified  int
	Strokes         int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
