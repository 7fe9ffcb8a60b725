package log

import (
	"bytes"
	"errors"
	"testing"

	"github.com/mpx-cli/mpx/filesystem"
	"github.com/mpx-cli/mpx/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestLogging(t *testing.T) {
	Convey("Given logging is disabled", t, func() {
		viper.Set(key.LogsWrite, false)
		So(Setup(), ShouldBeNil)

		Convey("Emissions are discarded without panicking", func() {
			So(func() { Warnf("dropped %d", 1) }, ShouldNotPanic)
		})
	})

	Convey("Given an explicit output", t, func() {
		var buf bytes.Buffer
		viper.Set(key.LogsLevel, "debug")
		viper.Set(key.LogsJson, false)
		So(SetOutput(&buf), ShouldBeNil)

		Convey("Structured fields are written", func() {
			With(Fields{"state": "Playing"}).Info("state changed")
			So(buf.String(), ShouldContainSubstring, "state=Playing")
		})

		Convey("Errors are attached", func() {
			WithError(errors.New("boom")).Warn("restart")
			So(buf.String(), ShouldContainSubstring, "error=boom")
		})

		Convey("An unknown level falls back to info", func() {
			viper.Set(key.LogsLevel, "chatty")
			So(SetOutput(&buf), ShouldBeNil)
			Debug("hidden")
			So(buf.String(), ShouldNotContainSubstring, "hidden")
		})
	})

	Convey("Given logging is enabled", t, func() {
		viper.Set(key.LogsWrite, true)
		defer viper.Set(key.LogsWrite, false)

		So(Setup(), ShouldBeNil)
	})
}
