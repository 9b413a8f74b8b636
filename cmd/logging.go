package main

/*
	Copyright 2019 Nicholas Krichevsky

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

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/xerrors"
)

// makeLoggerConfig gets the logging config for the given verbosity. Logs always go to stderr, as stdout is reserved
// for the summary line.
func makeLoggerConfig(verbose bool) zap.Config {
	if verbose {
		config := zap.NewDevelopmentConfig()
		config.OutputPaths = []string{"stderr"}
		config.ErrorOutputPaths = []string{"stderr"}

		return config
	}

	return zap.Config{
		Level:            zap.NewAtomicLevelAt(zapcore.ErrorLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
}

// makeLogger builds a logger that tags every line with a fresh run id
func makeLogger(verbose bool) (*zap.Logger, error) {
	logger, err := makeLoggerConfig(verbose).Build()
	if err != nil {
		return nil, xerrors.Errorf("could not build logger: %w", err)
	}

	return logger.With(zap.String("run", uuid.New().String())), nil
}

// syncLogger flushes logger. zap fails to sync terminals (e.g. "sync /dev/stderr: invalid argument"), and there is
// nothing useful to do about a failed flush on the way out, so the error is dropped.
func syncLogger(logger *zap.Logger) {
	_ = logger.Sync()
}
