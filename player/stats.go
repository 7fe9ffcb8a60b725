package player

import (
	"time"

	"github.com/samber/lo"
)

// StatKey names one entry of a Stats snapshot.
type StatKey string

const (
	StatStatus        StatKey = "status"
	StatCPU           StatKey = "cpu"
	StatAudioCPU      StatKey = "audio_cpu"
	StatVideoCPU      StatKey = "video_cpu"
	StatCache         StatKey = "cache"
	StatAVSync        StatKey = "av_sync"
	StatDroppedFrames StatKey = "dropped_frames"
)

// statsInterval is the minimum time between two Stats notifications.
const statsInterval = time.Second

// Stats is a snapshot of playback performance. It is rebuilt in full on
// every update; a key is missing when the player did not report it.
type Stats map[StatKey]any

// Float returns a numeric entry.
func (s Stats) Float(k StatKey) (float64, bool) {
	v, ok := s[k].(float64)
	return v, ok
}

// Keys returns the keys present in s.
func (s Stats) Keys() []StatKey {
	return lo.Keys(s)
}

func buildStats(state State, u StatUpdate) Stats {
	stats := Stats{StatStatus: state.String()}

	var cpu float64
	var cpuSeen bool
	add := func(k StatKey, v float64, ok bool) {
		if !ok {
			return
		}
		stats[k] = v
		cpu += v
		cpuSeen = true
	}
	video, vok := u.VideoCPU.Get()
	add(StatVideoCPU, video, vok)
	audio, aok := u.AudioCPU.Get()
	add(StatAudioCPU, audio, aok)
	if out, ok := u.OutputCPU.Get(); ok {
		cpu += out
		cpuSeen = true
	}
	if cpuSeen {
		stats[StatCPU] = cpu
	}

	if v, ok := u.CacheUsage.Get(); ok {
		stats[StatCache] = v
	}
	if v, ok := u.AVSync.Get(); ok {
		stats[StatAVSync] = v
	}
	if v, ok := u.DroppedFrames.Get(); ok {
		stats[StatDroppedFrames] = v
	}
	return stats
}

// statsThrottle lets at most one update through per interval.
type statsThrottle struct {
	now  func() time.Time
	last time.Time
}

func (t *statsThrottle) allow() bool {
	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < statsInterval {
		return false
	}
	t.last = now
	return true
}

func (t *statsThrottle) reset() {
	t.last = time.Time{}
}
