package player

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mpx-cli/mpx/constant"
	"github.com/mpx-cli/mpx/key"
	"github.com/mpx-cli/mpx/util"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Settings is everything that decides how the player is launched and how a
// session behaves. Fields above OSDLevel only take effect on a launch.
type Settings struct {
	Binary           string
	VideoOutput      string
	AudioOutput      string
	CacheSize        int
	Framedrop        bool
	Threads          int
	Fullscreen       bool
	SubtitleEncoding string
	ExtraArgs        []string

	OSDLevel         int
	Volume           int
	ScreenshotDir    string
	TerminateTimeout time.Duration
	UpdateStatistics bool
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Binary:           constant.DefaultBinary,
		Threads:          1,
		OSDLevel:         1,
		Volume:           100,
		TerminateTimeout: 3 * time.Second,
	}
}

// SettingsFromConfig reads the player.* keys of the global configuration.
func SettingsFromConfig() Settings {
	s := Settings{
		Binary:           viper.GetString(key.PlayerBinary),
		VideoOutput:      viper.GetString(key.PlayerVideoOutput),
		AudioOutput:      viper.GetString(key.PlayerAudioOutput),
		CacheSize:        viper.GetInt(key.PlayerCacheSize),
		Framedrop:        viper.GetBool(key.PlayerFramedrop),
		Threads:          viper.GetInt(key.PlayerThreads),
		Fullscreen:       viper.GetBool(key.PlayerFullscreen),
		SubtitleEncoding: viper.GetString(key.PlayerSubtitleEncoding),
		ExtraArgs:        viper.GetStringSlice(key.PlayerArgs),
		OSDLevel:         viper.GetInt(key.PlayerOSDLevel),
		Volume:           viper.GetInt(key.PlayerVolume),
		ScreenshotDir:    viper.GetString(key.PlayerScreenshotDir),
		TerminateTimeout: time.Duration(viper.GetInt(key.PlayerTerminateTimeout)) * time.Second,
		UpdateStatistics: viper.GetBool(key.PlayerUpdateStatistics),
	}
	return s.normalized()
}

// Upper bounds of the ranged settings.
const (
	MaxOSDLevel = 3
	MaxVolume   = 100
)

// CheckSetting validates a value for a player.* configuration key before it
// is stored. Values that normalization would change are rejected; keys
// outside the player section are not checked.
func CheckSetting(k string, v any) error {
	switch k {
	case key.PlayerOSDLevel:
		return checkRange(k, v, 0, MaxOSDLevel)
	case key.PlayerVolume:
		return checkRange(k, v, 0, MaxVolume)
	case key.PlayerThreads, key.PlayerTerminateTimeout:
		return checkRange(k, v, 1, math.MaxInt)
	case key.PlayerCacheSize:
		return checkRange(k, v, 0, math.MaxInt)
	case key.PlayerBinary:
		if b, ok := v.(string); ok && strings.TrimSpace(b) == "" {
			return fmt.Errorf("%s must not be empty", k)
		}
	}
	return nil
}

func checkRange(k string, v any, lo, hi int) error {
	n, ok := v.(int)
	if !ok {
		return fmt.Errorf("%s must be an integer, got %v", k, v)
	}
	if n != util.Clamp(n, lo, hi) {
		if hi == math.MaxInt {
			return fmt.Errorf("%s must be at least %d, got %d", k, lo, n)
		}
		return fmt.Errorf("%s must be between %d and %d, got %d", k, lo, hi, n)
	}
	return nil
}

// RestartsSession reports whether a new value for the configuration key k
// reaches a running player only through a restart.
func RestartsSession(k string) bool {
	s := DefaultSettings()
	next := s
	switch k {
	case key.PlayerBinary:
		next.Binary += "-next"
	case key.PlayerArgs:
		next.ExtraArgs = append(slices.Clone(next.ExtraArgs), "-quiet")
	case key.PlayerVideoOutput:
		next.VideoOutput += "null"
	case key.PlayerAudioOutput:
		next.AudioOutput += "null"
	case key.PlayerCacheSize:
		next.CacheSize++
	case key.PlayerFramedrop:
		next.Framedrop = !next.Framedrop
	case key.PlayerThreads:
		next.Threads++
	case key.PlayerFullscreen:
		next.Fullscreen = !next.Fullscreen
	case key.PlayerSubtitleEncoding:
		next.SubtitleEncoding += "utf8"
	case key.PlayerScreenshotDir:
		next.ScreenshotDir += "shots"
	case key.PlayerOSDLevel:
		next.OSDLevel++
	case key.PlayerVolume:
		next.Volume--
	case key.PlayerTerminateTimeout:
		next.TerminateTimeout += time.Second
	case key.PlayerUpdateStatistics:
		next.UpdateStatistics = !next.UpdateStatistics
	default:
		return false
	}
	return s.NeedsRestart(next)
}

func (s Settings) normalized() Settings {
	if s.Binary == "" {
		s.Binary = constant.DefaultBinary
	}
	if s.Threads < 1 {
		s.Threads = 1
	}
	if s.TerminateTimeout <= 0 {
		s.TerminateTimeout = 3 * time.Second
	}
	s.OSDLevel = util.Clamp(s.OSDLevel, 0, MaxOSDLevel)
	s.Volume = util.Clamp(s.Volume, 0, MaxVolume)
	s.CacheSize = max(s.CacheSize, 0)
	return s
}

// NeedsRestart reports whether moving from s to next changes anything that
// only a new process can pick up.
func (s Settings) NeedsRestart(next Settings) bool {
	return s.Binary != next.Binary ||
		s.VideoOutput != next.VideoOutput ||
		s.AudioOutput != next.AudioOutput ||
		s.CacheSize != next.CacheSize ||
		s.Framedrop != next.Framedrop ||
		s.Threads != next.Threads ||
		s.Fullscreen != next.Fullscreen ||
		s.SubtitleEncoding != next.SubtitleEncoding ||
		!slices.Equal(s.ExtraArgs, next.ExtraArgs) ||
		s.ScreenshotDir != next.ScreenshotDir
}

// Equalizer holds video equalizer values in the range -100..100.
type Equalizer struct {
	Brightness int `json:"brightness"`
	Contrast   int `json:"contrast"`
	Gamma      int `json:"gamma"`
	Hue        int `json:"hue"`
	Saturation int `json:"saturation"`
}

type equalizerValue struct {
	name  string
	value int
}

func (e Equalizer) values() []equalizerValue {
	return []equalizerValue{
		{"brightness", e.Brightness},
		{"contrast", e.Contrast},
		{"gamma", e.Gamma},
		{"hue", e.Hue},
		{"saturation", e.Saturation},
	}
}

// commands returns the live property updates for e.
func (e Equalizer) commands() []string {
	return lo.Map(e.values(), func(v equalizerValue, _ int) string {
		return fmt.Sprintf("set_property %s %d", v.name, util.Clamp(v.value, -100, 100))
	})
}

// args returns the launch flags for the non-zero values of e.
func (e Equalizer) args() []string {
	var args []string
	for _, v := range e.values() {
		if v.value != 0 {
			args = append(args, "-"+v.name, strconv.Itoa(util.Clamp(v.value, -100, 100)))
		}
	}
	return args
}

// launch is what one process start needs besides the settings.
type launch struct {
	path      string
	position  float64
	volume    int
	muted     bool
	subtitles []string
	equalizer Equalizer
}

// arguments builds the command line for one launch.
func (s Settings) arguments(l launch) ([]string, error) {
	target, err := sanitizeMediaTarget(l.path)
	if err != nil {
		return nil, fmt.Errorf("invalid media target: %w", err)
	}

	args := slices.Clone(constant.SlaveArgs)
	args = append(args,
		"-osdlevel", strconv.Itoa(s.OSDLevel),
		"-volume", strconv.Itoa(util.Clamp(l.volume, 0, 100)),
	)
	if l.muted {
		args = append(args, "-mute", "yes")
	}
	if s.VideoOutput != "" {
		args = append(args, "-vo", s.VideoOutput)
	}
	if s.AudioOutput != "" {
		args = append(args, "-ao", s.AudioOutput)
	}
	if s.CacheSize > 0 {
		args = append(args, "-cache", strconv.Itoa(s.CacheSize))
	} else {
		args = append(args, "-nocache")
	}
	if s.Framedrop {
		args = append(args, "-framedrop")
	}
	if s.Threads > 1 {
		args = append(args, "-lavdopts", "threads="+strconv.Itoa(s.Threads))
	}
	if s.Fullscreen {
		args = append(args, "-fs")
	}
	if s.SubtitleEncoding != "" {
		args = append(args, "-subcp", s.SubtitleEncoding)
	}
	if len(l.subtitles) > 0 {
		args = append(args, "-sub", strings.Join(l.subtitles, ","))
	}
	if l.position > 0 {
		args = append(args, "-ss", formatFloat(l.position))
	}
	args = append(args, l.equalizer.args()...)
	args = append(args, "-vf-add", "screenshot")
	args = append(args, s.ExtraArgs...)

	return append(args, target), nil
}

// sanitizeMediaTarget keeps a path or URL from being read as a flag.
func sanitizeMediaTarget(target string) (string, error) {
	t := strings.TrimSpace(target)
	if t == "" {
		return "", errors.New("empty path")
	}
	if strings.ContainsAny(t, "\x00\n\r") {
		return "", errors.New("invalid control characters in path")
	}
	if strings.HasPrefix(t, "-") {
		return "", errors.New("path must not start with '-'")
	}

	if strings.Contains(t, "://") {
		u, err := url.Parse(t)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		if u.Scheme == "" {
			return "", fmt.Errorf("invalid URL: %s", t)
		}
		return t, nil
	}

	return filepath.Clean(t), nil
}
