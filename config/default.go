// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/mpx-cli/mpx/color"
	"github.com/mpx-cli/mpx/constant"
	"github.com/mpx-cli/mpx/key"
	"github.com/mpx-cli/mpx/player"
	"github.com/mpx-cli/mpx/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
	// Restarts is set for keys whose new value restarts a running player.
	Restarts bool
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Mpx + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
		Restarts    bool   `json:"restarts"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
		Restarts:    f.Restarts,
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc, Restarts: player.RestartsSession(k)}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.PlayerBinary, constant.DefaultBinary, "Player executable, either a name looked up in PATH or an absolute path")
	register(key.PlayerArgs, []string{}, "Extra arguments appended to every player launch")
	register(key.PlayerVideoOutput, "", "Video output driver passed with -vo.\nEmpty lets the player decide")
	register(key.PlayerAudioOutput, "", "Audio output driver passed with -ao.\nEmpty lets the player decide")
	register(key.PlayerCacheSize, 0, "Cache size in kilobytes, 0 disables the cache")
	register(key.PlayerFramedrop, false, "Drop frames when video decoding falls behind")
	register(key.PlayerThreads, 1, "Number of decoding threads")
	register(key.PlayerFullscreen, false, "Start playback in fullscreen")
	register(key.PlayerSubtitleEncoding, "", "Subtitle code page passed with -subcp")
	register(key.PlayerOSDLevel, 1, "On-screen display level from 0 (silent) to 3")
	register(key.PlayerVolume, 100, "Initial volume from 0 to 100")
	register(key.PlayerScreenshotDir, "", "Directory screenshots are written to.\nEmpty uses the directory shown by `mpx where --screenshots`")
	register(key.PlayerTerminateTimeout, 3, "Seconds to wait for the player to exit before killing it")
	register(key.PlayerUpdateStatistics, false, "Emit performance statistics while playing")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}{{ if .Restarts }}
{{ blue "Applies:" }} {{ faint "restarts a running player" }}{{ end }}`))
