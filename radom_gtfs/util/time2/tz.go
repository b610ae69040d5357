// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package time2

import (
	"fmt"
	"time"
)

const PolishTimezoneName = "Europe/Warsaw"

var PolishTimezone *time.Location

func init() {
	var err error
	PolishTimezone, err = time.LoadLocation(PolishTimezoneName)
	if err != nil {
		panic(fmt.Errorf("failed to load %s timezone: %w", PolishTimezoneName, err))
	}
}
