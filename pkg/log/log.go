/*
 * Copyright © 2025 Kaleido, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
 * an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Package log carries a logrus entry on the context, so that every line logged
// while handling a sign or verify call shares its fields.
package log

import (
	"context"
	"io"
	"math"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kaleido-io/walletverify/pkg/confutil"
	"github.com/kaleido-io/walletverify/pkg/wvconf"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var (
	rootLogger = logrus.NewEntry(logrus.StandardLogger())

	// L accesses the current logger from the context
	L = loggerFromContext

	initialized atomic.Bool
)

const (
	maxFieldLen      = 61
	correlationIDLen = 12
)

type ctxLogKey struct{}

// InitConfig applies the level, output and format. Until it has been called
// once, the first logger added to a context applies the defaults.
func InitConfig(conf *wvconf.LogConfig) {
	initialized.Store(true)
	defs := wvconf.LogDefaults
	SetLevel(confutil.StringNotEmpty(conf.Level, *defs.Level))
	logrus.SetOutput(newOutput(conf, defs))
	formatter, reportCaller := newFormatter(conf, defs)
	logrus.SetReportCaller(reportCaller)
	logrus.SetFormatter(formatter)
}

func newOutput(conf, defs *wvconf.LogConfig) io.Writer {
	switch confutil.StringNotEmpty(conf.Output, *defs.Output) {
	case "file":
		filename := confutil.StringNotEmpty(conf.File.Filename, *defs.File.Filename)
		maxSizeBytes := confutil.ByteSize(conf.File.MaxSize, 0, *defs.File.MaxSize)
		maxAge := confutil.DurationMin(conf.File.MaxAge, 0, *defs.File.MaxAge)
		rootLogger.Infof("Logs diverted to %s", filename)
		// lumberjack counts in whole megabytes and days
		return &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    int(math.Ceil(float64(maxSizeBytes) / (1024 * 1024))),
			MaxBackups: confutil.IntMin(conf.File.MaxBackups, 0, *defs.File.MaxBackups),
			MaxAge:     int(math.Ceil(float64(maxAge) / float64(24*time.Hour))),
			Compress:   confutil.Bool(conf.File.Compress, *defs.File.Compress),
		}
	case "stdout":
		return os.Stdout
	default:
		return os.Stderr
	}
}

func newFormatter(conf, defs *wvconf.LogConfig) (formatter logrus.Formatter, reportCaller bool) {
	timeFormat := confutil.StringNotEmpty(conf.TimeFormat, *defs.TimeFormat)
	disableColor := confutil.Bool(conf.DisableColor, *defs.DisableColor)
	forceColor := confutil.Bool(conf.ForceColor, *defs.ForceColor)

	switch confutil.StringNotEmpty(conf.Format, *defs.Format) {
	case "json":
		formatter = &logrus.JSONFormatter{
			TimestampFormat: timeFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  confutil.StringNotEmpty(conf.JSON.TimestampField, *defs.JSON.TimestampField),
				logrus.FieldKeyLevel: confutil.StringNotEmpty(conf.JSON.LevelField, *defs.JSON.LevelField),
				logrus.FieldKeyMsg:   confutil.StringNotEmpty(conf.JSON.MessageField, *defs.JSON.MessageField),
				logrus.FieldKeyFunc:  confutil.StringNotEmpty(conf.JSON.FuncField, *defs.JSON.FuncField),
				logrus.FieldKeyFile:  confutil.StringNotEmpty(conf.JSON.FileField, *defs.JSON.FileField),
			},
		}
	case "detailed":
		formatter = &logrus.TextFormatter{
			DisableColors:   disableColor,
			ForceColors:     forceColor,
			TimestampFormat: timeFormat,
			FullTimestamp:   true,
		}
		reportCaller = true
	default:
		formatter = &prefixed.TextFormatter{
			DisableColors:   disableColor,
			ForceColors:     forceColor,
			TimestampFormat: timeFormat,
			ForceFormatting: true,
			FullTimestamp:   true,
		}
	}
	if confutil.Bool(conf.UTC, *defs.UTC) {
		formatter = &utcFormatter{Formatter: formatter}
	}
	return formatter, reportCaller
}

type utcFormatter struct {
	logrus.Formatter
}

func (uf *utcFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.UTC()
	return uf.Formatter.Format(e)
}

// SetLevel accepts error, warn, info, debug or trace in any case. Anything
// else, including the panic and fatal levels, selects info.
func SetLevel(level string) {
	l, err := logrus.ParseLevel(level)
	if err != nil || l < logrus.ErrorLevel {
		l = logrus.InfoLevel
	}
	logrus.SetLevel(l)
}

func GetLevel() string {
	if l := logrus.GetLevel(); l != logrus.WarnLevel {
		return l.String()
	}
	return "warn"
}

func withLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	if !initialized.Load() {
		InitConfig(&wvconf.LogConfig{})
	}
	return context.WithValue(ctx, ctxLogKey{}, logger)
}

// WithLogField adds a field to the context logger, truncating long values
func WithLogField(ctx context.Context, key, value string) context.Context {
	if len(value) > maxFieldLen {
		value = value[0:maxFieldLen] + "..."
	}
	return withLogger(ctx, loggerFromContext(ctx).WithField(key, value))
}

// WithCorrelationID tags everything logged under the returned context with a
// short random id, so the lines of one sign or verify call can be grouped.
func WithCorrelationID(ctx context.Context, key string) (context.Context, string) {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")[0:correlationIDLen]
	return WithLogField(ctx, key, id), id
}

func loggerFromContext(ctx context.Context) *logrus.Entry {
	if logger, ok := ctx.Value(ctxLogKey{}).(*logrus.Entry); ok {
		return logger
	}
	return rootLogger
}
