package player

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/mo"
)

// Event is a typed fact extracted from one line of player output.
type Event interface {
	event()
}

// TimePosition carries the playback position from a status line or an answer.
type TimePosition struct {
	Seconds float64
}

// StatUpdate carries the performance columns of a status line. A column
// that is missing or unreadable is left empty.
type StatUpdate struct {
	AVSync        mo.Option[float64]
	VideoCPU      mo.Option[float64]
	OutputCPU     mo.Option[float64]
	AudioCPU      mo.Option[float64]
	DroppedFrames mo.Option[int]
	CacheUsage    mo.Option[float64]
}

// Answer is a reply to a get_property style query: ANS_<key>=<value>.
type Answer struct {
	Key   string
	Value string
}

// StreamInfo announces a video, audio or subtitle stream.
type StreamInfo struct {
	ID   int
	Type StreamType
}

// StreamAttribute attaches a language or name to an announced stream.
type StreamAttribute struct {
	ID    int
	Type  StreamType
	Name  string
	Value string
}

// ChapterInfo attaches a start, end or name to a chapter.
type ChapterInfo struct {
	ID    int
	Name  string
	Value string
}

// Info is any other identify line, such as ID_LENGTH or ID_VIDEO_FORMAT.
type Info struct {
	Key   string
	Value string
}

// ErrorLine is a diagnostic the player printed on stderr.
type ErrorLine struct {
	Text string
}

// ExitSignal is printed by the player right before it exits.
type ExitSignal struct {
	Reason ExitReason
}

// Opening is printed when the player starts opening a file.
type Opening struct {
	Path string
}

// Buffering reports cache fill progress before playback.
type Buffering struct {
	Percent mo.Option[float64]
}

// Indexing reports index generation progress before playback.
type Indexing struct {
	Percent mo.Option[float64]
}

// PlaybackStarted is printed once the first frame is about to be shown.
type PlaybackStarted struct{}

// PauseMarker is printed whenever the player enters pause.
type PauseMarker struct{}

func (TimePosition) event()    {}
func (StatUpdate) event()      {}
func (Answer) event()          {}
func (StreamInfo) event()      {}
func (StreamAttribute) event() {}
func (ChapterInfo) event()     {}
func (Info) event()            {}
func (ErrorLine) event()       {}
func (ExitSignal) event()      {}
func (Opening) event()         {}
func (Buffering) event()       {}
func (Indexing) event()        {}
func (PlaybackStarted) event() {}
func (PauseMarker) event()     {}

// ExitReason classifies why the player is exiting.
type ExitReason int

const (
	ExitUnknown ExitReason = iota
	ExitEndOfFile
	ExitQuit
	ExitError
)

func (r ExitReason) String() string {
	switch r {
	case ExitEndOfFile:
		return "EndOfFile"
	case ExitQuit:
		return "Quit"
	case ExitError:
		return "Error"
	default:
		return "Unknown"
	}
}

var (
	rePosAudio   = regexp.MustCompile(`A:\s*(-?[\d.]+)`)
	rePosVideo   = regexp.MustCompile(`V:\s*(-?[\d.]+)`)
	reAVSync     = regexp.MustCompile(`A-V:\s*(\S+)`)
	reVideoTail  = regexp.MustCompile(`\d+/\s*\d+\s+(\S+)%\s+(\S+)%\s+(\S+)%\s+(\S+)\s+\S+(?:\s+(\S+)%)?`)
	reAudioTail  = regexp.MustCompile(`\bof\s+[\d.]+\s+\([^)]*\)\s+(\S+)%(?:\s+(\S+)%)?`)
	reAnswer     = regexp.MustCompile(`^ANS_([^=]+)=(.*)$`)
	reIdentify   = regexp.MustCompile(`^ID_([A-Z0-9_]+)=(.*)$`)
	reStreamAttr = regexp.MustCompile(`^(AID|SID|VID)_(\d+)_(LANG|NAME)$`)
	reChapter    = regexp.MustCompile(`^CHAPTER_(\d+)_(START|END|NAME)$`)
	reExiting    = regexp.MustCompile(`^Exiting\.\.\.\s*\((.*)\)`)
	reOpening    = regexp.MustCompile(`^Playing (.+)\.$`)
	reCacheFill  = regexp.MustCompile(`^Cache fill:\s*([\d.]+)%`)
	reIndexing   = regexp.MustCompile(`^Generating Index:\s*([\d.]+)\s*%`)
	rePause      = regexp.MustCompile(`^=+\s+PAUSE\s+=+$`)
)

var errorMarkers = []string{"error", "failed", "cannot", "can't", "unable"}

// Parser turns player output lines into events. The only context it carries
// across lines is the id of the last announced external subtitle file,
// which the following filename line refers to.
type Parser struct {
	lastFileSub mo.Option[int]
}

// NewParser returns a parser with empty context.
func NewParser() *Parser {
	return &Parser{}
}

// Reset drops the carried context; called when a new process starts.
func (p *Parser) Reset() {
	p.lastFileSub = mo.None[int]()
}

// Parse converts one stdout line into zero or more events.
func (p *Parser) Parse(line string) []Event {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if strings.HasPrefix(line, "A:") || strings.HasPrefix(line, "V:") {
		return parseStatus(line)
	}
	if m := reAnswer.FindStringSubmatch(line); m != nil {
		return []Event{Answer{Key: m[1], Value: unquote(m[2])}}
	}
	if m := reIdentify.FindStringSubmatch(line); m != nil {
		return p.parseIdentify(m[1], m[2])
	}

	switch {
	case line == "Starting playback...":
		return []Event{PlaybackStarted{}}
	case line == "ID_PAUSED", rePause.MatchString(line):
		return []Event{PauseMarker{}}
	}

	if m := reExiting.FindStringSubmatch(line); m != nil {
		return []Event{ExitSignal{Reason: exitReason(m[1])}}
	}
	if m := reCacheFill.FindStringSubmatch(line); m != nil {
		return []Event{Buffering{Percent: parseFloat(m[1])}}
	}
	if m := reIndexing.FindStringSubmatch(line); m != nil {
		return []Event{Indexing{Percent: parseFloat(m[1])}}
	}
	if m := reOpening.FindStringSubmatch(line); m != nil {
		return []Event{Opening{Path: m[1]}}
	}

	return nil
}

// ParseError converts one stderr line. Error markers become ErrorLine;
// anything else is parsed like stdout since the player mixes the streams.
func (p *Parser) ParseError(line string) []Event {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	lower := strings.ToLower(trimmed)
	for _, marker := range errorMarkers {
		if strings.Contains(lower, marker) {
			return []Event{ErrorLine{Text: trimmed}}
		}
	}
	return p.Parse(trimmed)
}

func parseStatus(line string) []Event {
	var events []Event

	pos := mo.None[float64]()
	if m := rePosAudio.FindStringSubmatch(line); m != nil {
		pos = parseFloat(m[1])
	}
	if pos.IsAbsent() {
		if m := rePosVideo.FindStringSubmatch(line); m != nil {
			pos = parseFloat(m[1])
		}
	}
	if seconds, ok := pos.Get(); ok {
		events = append(events, TimePosition{Seconds: seconds})
	}

	var stats StatUpdate
	if m := reAVSync.FindStringSubmatch(line); m != nil {
		stats.AVSync = parseFloat(m[1])
	}
	if m := reVideoTail.FindStringSubmatch(line); m != nil {
		stats.VideoCPU = parseFloat(m[1])
		stats.OutputCPU = parseFloat(m[2])
		stats.AudioCPU = parseFloat(m[3])
		stats.DroppedFrames = parseInt(m[4])
		stats.CacheUsage = parseFloat(m[5])
	} else if m := reAudioTail.FindStringSubmatch(line); m != nil {
		stats.AudioCPU = parseFloat(m[1])
		stats.CacheUsage = parseFloat(m[2])
	}
	if !stats.empty() {
		events = append(events, stats)
	}

	return events
}

func (p *Parser) parseIdentify(name, value string) []Event {
	value = unquote(value)

	switch name {
	case "VIDEO_ID":
		return streamInfo(value, StreamVideo)
	case "AUDIO_ID":
		return streamInfo(value, StreamAudio)
	case "SUBTITLE_ID":
		return streamInfo(value, StreamSubtitle)
	case "FILE_SUB_ID":
		events := streamInfo(value, StreamFileSubtitle)
		if len(events) > 0 {
			p.lastFileSub = mo.Some(events[0].(StreamInfo).ID)
		}
		return events
	case "FILE_SUB_FILENAME":
		id, ok := p.lastFileSub.Get()
		if !ok {
			return nil
		}
		return []Event{StreamAttribute{ID: id, Type: StreamFileSubtitle, Name: "name", Value: value}}
	case "EXIT":
		return []Event{ExitSignal{Reason: exitReason(value)}}
	}

	if m := reStreamAttr.FindStringSubmatch(name); m != nil {
		id, ok := parseInt(m[2]).Get()
		if !ok {
			return nil
		}
		kind := map[string]StreamType{"AID": StreamAudio, "SID": StreamSubtitle, "VID": StreamVideo}[m[1]]
		return []Event{StreamAttribute{ID: id, Type: kind, Name: strings.ToLower(m[3]), Value: value}}
	}
	if m := reChapter.FindStringSubmatch(name); m != nil {
		id, ok := parseInt(m[1]).Get()
		if !ok {
			return nil
		}
		return []Event{ChapterInfo{ID: id, Name: strings.ToLower(m[2]), Value: value}}
	}

	return []Event{Info{Key: name, Value: value}}
}

func streamInfo(value string, kind StreamType) []Event {
	id, ok := parseInt(value).Get()
	if !ok {
		return nil
	}
	return []Event{StreamInfo{ID: id, Type: kind}}
}

func exitReason(text string) ExitReason {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "end of file", "eof":
		return ExitEndOfFile
	case "quit":
		return ExitQuit
	case "error":
		return ExitError
	default:
		return ExitUnknown
	}
}

func (s StatUpdate) empty() bool {
	return s.AVSync.IsAbsent() && s.VideoCPU.IsAbsent() && s.OutputCPU.IsAbsent() &&
		s.AudioCPU.IsAbsent() && s.DroppedFrames.IsAbsent() && s.CacheUsage.IsAbsent()
}

func parseFloat(s string) mo.Option[float64] {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return mo.None[float64]()
	}
	return mo.Some(v)
}

func parseInt(s string) mo.Option[int] {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return mo.None[int]()
	}
	return mo.Some(v)
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}
