/*
Copyright (c) Facebook, Inc. and its affiliates.

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

package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clockfeed/if482/telegram"
)

func TestParseStatus(t *testing.T) {
	status, err := parseStatus("confident")
	require.NoError(t, err)
	require.Equal(t, telegram.Confident, status)

	status, err = parseStatus("stale")
	require.NoError(t, err)
	require.Equal(t, telegram.StaleButSet, status)

	status, err = parseStatus("unknown")
	require.NoError(t, err)
	require.Equal(t, telegram.Unknown, status)

	_, err = parseStatus("great")
	require.Error(t, err)
}

func TestParseSeason(t *testing.T) {
	season, err := parseSeason("L")
	require.NoError(t, err)
	require.Equal(t, telegram.SeasonLocal, season)

	_, err = parseSeason("X")
	require.Error(t, err)
	_, err = parseSeason("")
	require.Error(t, err)
}
