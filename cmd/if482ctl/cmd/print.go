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
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/clockfeed/if482/telegram"
)

var printTimeFlag string
var printStatusFlag string
var printSeasonFlag string

func init() {
	RootCmd.AddCommand(printCmd)
	printCmd.Flags().StringVarP(&printTimeFlag, "time", "T", "", "Time to announce, RFC3339. Empty means now+1s")
	printCmd.Flags().StringVarP(&printStatusFlag, "status", "s", "confident", "Sync status. Can be: confident, stale, unknown")
	printCmd.Flags().StringVarP(&printSeasonFlag, "season", "S", "L", "Season character. Can be: W, S, U, L")
}

func parseStatus(s string) (telegram.SyncStatus, error) {
	switch s {
	case "confident":
		return telegram.Confident, nil
	case "stale":
		return telegram.StaleButSet, nil
	case "unknown":
		return telegram.Unknown, nil
	}
	return telegram.Unknown, fmt.Errorf("unknown sync status %q", s)
}

func parseSeason(s string) (telegram.Season, error) {
	if len(s) != 1 || !telegram.Season(s[0]).Valid() {
		return 0, fmt.Errorf("season must be one of W, S, U, L")
	}
	return telegram.Season(s[0]), nil
}

var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Render one IF482 telegram",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()

		target := time.Now().Add(time.Second)
		if printTimeFlag != "" {
			t, err := time.Parse(time.RFC3339, printTimeFlag)
			if err != nil {
				log.Fatalf("Failed to parse time: %v", err)
			}
			target = t
		}
		status, err := parseStatus(printStatusFlag)
		if err != nil {
			log.Fatal(err)
		}
		season, err := parseSeason(printSeasonFlag)
		if err != nil {
			log.Fatal(err)
		}

		frame := telegram.Encode(target, status, season)
		fmt.Printf("%q\n", frame.String())
		fmt.Printf("% x\n", frame.Bytes())
	},
}
