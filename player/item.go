package player

import (
	"slices"
	"strconv"

	"github.com/samber/lo"
)

// StreamType distinguishes the kinds of streams a media file can carry.
type StreamType int

const (
	StreamVideo StreamType = iota
	StreamAudio
	StreamSubtitle
	StreamFileSubtitle
)

func (t StreamType) String() string {
	switch t {
	case StreamVideo:
		return "video"
	case StreamAudio:
		return "audio"
	case StreamSubtitle:
		return "subtitle"
	case StreamFileSubtitle:
		return "file-subtitle"
	default:
		return "unknown"
	}
}

// Stream is one track discovered while identifying the media.
type Stream struct {
	ID       int        `json:"id"`
	Type     StreamType `json:"type"`
	Language string     `json:"language,omitempty"`
	Name     string     `json:"name,omitempty"`
}

// Chapter is a chapter mark discovered while identifying the media.
type Chapter struct {
	ID    int     `json:"id"`
	Name  string  `json:"name,omitempty"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Item describes the media being played. It is owned by the caller; the
// player only attaches what it discovers: streams, chapters, technical
// details and the position a restart resumed from.
type Item struct {
	Path  string `json:"path"`
	Title string `json:"title,omitempty"`

	Length  float64 `json:"length,omitempty"`
	Demuxer string  `json:"demuxer,omitempty"`

	VideoFormat string  `json:"video_format,omitempty"`
	VideoCodec  string  `json:"video_codec,omitempty"`
	VideoWidth  int     `json:"video_width,omitempty"`
	VideoHeight int     `json:"video_height,omitempty"`
	VideoFPS    float64 `json:"video_fps,omitempty"`

	AudioCodec    string `json:"audio_codec,omitempty"`
	AudioBitrate  int    `json:"audio_bitrate,omitempty"`
	AudioRate     int    `json:"audio_rate,omitempty"`
	AudioChannels int    `json:"audio_channels,omitempty"`

	Streams  []Stream  `json:"streams,omitempty"`
	Chapters []Chapter `json:"chapters,omitempty"`

	RestartTime float64 `json:"restart_time,omitempty"`
}

// NewItem returns an item for the given file or URL.
func NewItem(path string) *Item {
	return &Item{Path: path}
}

// StreamsOf returns the discovered streams of one kind, in discovery order.
func (i *Item) StreamsOf(t StreamType) []Stream {
	return lo.Filter(i.Streams, func(s Stream, _ int) bool {
		return s.Type == t
	})
}

// Stream looks up a discovered stream.
func (i *Item) Stream(t StreamType, id int) (Stream, bool) {
	return lo.Find(i.Streams, func(s Stream) bool {
		return s.Type == t && s.ID == id
	})
}

// addStream records a stream; it reports false when it was already known.
func (i *Item) addStream(t StreamType, id int) bool {
	if _, ok := i.Stream(t, id); ok {
		return false
	}
	i.Streams = append(i.Streams, Stream{ID: id, Type: t})
	return true
}

func (i *Item) setStreamAttribute(a StreamAttribute) bool {
	i.addStream(a.Type, a.ID)
	_, idx, _ := lo.FindIndexOf(i.Streams, func(s Stream) bool {
		return s.Type == a.Type && s.ID == a.ID
	})

	switch a.Name {
	case "lang":
		i.Streams[idx].Language = a.Value
	case "name":
		i.Streams[idx].Name = a.Value
	default:
		return false
	}
	return true
}

func (i *Item) setChapter(c ChapterInfo) bool {
	_, idx, ok := lo.FindIndexOf(i.Chapters, func(ch Chapter) bool { return ch.ID == c.ID })
	if !ok {
		i.Chapters = append(i.Chapters, Chapter{ID: c.ID})
		idx = len(i.Chapters) - 1
	}

	switch c.Name {
	case "name":
		i.Chapters[idx].Name = c.Value
	case "start":
		v, err := strconv.ParseFloat(c.Value, 64)
		if err != nil {
			return false
		}
		i.Chapters[idx].Start = v
	case "end":
		v, err := strconv.ParseFloat(c.Value, 64)
		if err != nil {
			return false
		}
		i.Chapters[idx].End = v
	default:
		return false
	}
	return true
}

// applyInfo stores a recognized identify value; unknown keys and unreadable
// numbers are ignored.
func (i *Item) applyInfo(key, value string) bool {
	atoi := func(dst *int) bool {
		v, err := strconv.Atoi(value)
		if err != nil {
			return false
		}
		*dst = v
		return true
	}
	atof := func(dst *float64) bool {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return false
		}
		*dst = v
		return true
	}

	switch key {
	case "LENGTH":
		return atof(&i.Length)
	case "DEMUXER":
		i.Demuxer = value
	case "VIDEO_FORMAT":
		i.VideoFormat = value
	case "VIDEO_CODEC":
		i.VideoCodec = value
	case "VIDEO_WIDTH":
		return atoi(&i.VideoWidth)
	case "VIDEO_HEIGHT":
		return atoi(&i.VideoHeight)
	case "VIDEO_FPS":
		return atof(&i.VideoFPS)
	case "AUDIO_CODEC":
		i.AudioCodec = value
	case "AUDIO_BITRATE":
		return atoi(&i.AudioBitrate)
	case "AUDIO_RATE":
		return atoi(&i.AudioRate)
	case "AUDIO_NCH":
		return atoi(&i.AudioChannels)
	default:
		return false
	}
	return true
}

func (i *Item) clone() *Item {
	c := *i
	c.Streams = slices.Clone(i.Streams)
	c.Chapters = slices.Clone(i.Chapters)
	return &c
}
