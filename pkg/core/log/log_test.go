// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/momeni/ryde/pkg/core/log"
	"github.com/stretchr/testify/require"
)

// capture makes a JSON handler the default logger while f runs and
// returns the decoded records.
func capture(t *testing.T, level slog.Level, f func()) []map[string]any {
	t.Helper()
	buf := &bytes.Buffer{}
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	})))
	defer slog.SetDefault(old)
	f()

	var recs []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		rec := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		recs = append(recs, rec)
	}
	return recs
}

func TestScopedAttrs(t *testing.T) {
	require := require.New(t)
	base := context.Background()
	recs := capture(t, slog.LevelInfo, func() {
		ctx := log.With(base, log.Session("s-1"), log.UserID(7))
		log.Info(ctx, "ride transitioned", log.RideID(1000))
		log.Warn(ctx, "ride accept is rejected", log.UserID(9))
		log.Debug(ctx, "hidden")
		log.Error(base, "storage failure", log.Err("err", errors.New("boom")))
	})
	require.Len(recs, 3)

	require.Equal("ride transitioned", recs[0]["msg"])
	require.Equal("s-1", recs[0]["session"])
	require.EqualValues(7, recs[0]["user_id"])
	require.EqualValues(1000, recs[0]["ride_id"])
	src, ok := recs[0]["source"].(map[string]any)
	require.True(ok)
	require.Contains(src["file"], "log_test.go")

	require.EqualValues(9, recs[1]["user_id"], "explicit attrs win")
	require.Equal("s-1", recs[1]["session"])

	require.NotContains(recs[2], "session")
	require.Equal("boom", recs[2]["err"])
}

func TestWithDoesNotLeak(t *testing.T) {
	require := require.New(t)
	parent := log.With(context.Background(), log.Session("p"))
	recs := capture(t, slog.LevelInfo, func() {
		a := log.With(parent, log.RideID(1))
		b := log.With(parent, log.RideID(2))
		log.Info(a, "a")
		log.Info(b, "b")
		log.Info(parent, "parent", log.Err("err", nil))
	})
	require.Len(recs, 3)
	require.EqualValues(1, recs[0]["ride_id"])
	require.EqualValues(2, recs[1]["ride_id"])
	require.NotContains(recs[2], "ride_id")
	require.Equal("p", recs[2]["session"])
	require.Equal("no-error", recs[2]["err"])
}
