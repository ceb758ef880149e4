/*
Copyright 2024 The kubedrift authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package logger

import (
	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
	runtimeLog "sigs.k8s.io/controller-runtime/pkg/log"
)

// NewConsoleLogger returns a human-friendly Logger.
// Pretty print adds timestamp, log level and colorized output to the logs.
func NewConsoleLogger(colorize, prettify bool) logr.Logger {
	color.NoColor = !colorize
	zconfig := zerolog.ConsoleWriter{Out: color.Error, NoColor: !colorize}
	if !prettify {
		zconfig.PartsExclude = []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
		}
	}

	zlog := zerolog.New(zconfig).With().Timestamp().Logger()

	// Create a logr.Logger using zerolog as sink.
	zerologr.VerbosityFieldName = ""
	log := zerologr.New(&zlog)

	// Set controller-runtime logger.
	runtimeLog.SetLogger(log)

	return log
}

var (
	colorCorrect     = color.New(color.FgHiGreen)
	colorExtra       = color.New(color.FgYellow)
	colorMissing     = color.New(color.FgHiRed)
	colorConflicting = color.New(color.FgHiMagenta)
	colorManifest    = color.New(color.FgHiCyan)
)

// ColorizeClass colorizes a drift classification name.
func ColorizeClass(class string) string {
	switch class {
	case "correct":
		return colorCorrect.Sprint(class)
	case "extra":
		return colorExtra.Sprint(class)
	case "missing":
		return colorMissing.Sprint(class)
	case "conflicting":
		return colorConflicting.Sprint(class)
	default:
		return class
	}
}

// ColorizeManifest colorizes a manifest set name.
func ColorizeManifest(name string) string {
	return colorManifest.Sprint(name)
}
