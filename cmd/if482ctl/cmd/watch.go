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

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/clockfeed/if482/telegram"
	"github.com/clockfeed/if482/wallclock"
)

var watchCountFlag int
var watchSeasonFlag string

func init() {
	RootCmd.AddCommand(watchCmd)
	watchCmd.Flags().IntVarP(&watchCountFlag, "count", "c", 0, "Stop after this many telegrams. 0 means run forever")
	watchCmd.Flags().StringVarP(&watchSeasonFlag, "season", "S", "L", "Season character. Can be: W, S, U, L")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the telegram feed once per second without touching a serial port",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()

		season, err := parseSeason(watchSeasonFlag)
		if err != nil {
			log.Fatal(err)
		}

		src := wallclock.NewSystem(time.Local, wallclock.DefaultHoldover)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for i := 0; watchCountFlag == 0 || i < watchCountFlag; i++ {
			<-ticker.C
			status := src.Status()
			frame := telegram.Encode(src.Now().Add(time.Second), status, season)
			line := fmt.Sprintf("%q", frame.String())
			switch status {
			case telegram.Confident:
				fmt.Println(color.GreenString("%s", line))
			case telegram.StaleButSet:
				fmt.Println(color.YellowString("%s", line))
			default:
				fmt.Println(color.RedString("%s", line))
			}
		}
	},
}
