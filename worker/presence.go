// Copyright 2023 Northern.tech AS
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package worker

import (
	"context"
	"time"

	"github.com/mendersoftware/go-lib-micro/log"

	"github.com/mendersoftware/devicehub/app"
)

// RunPresenceScan runs the periodic presence scan until the context is
// canceled. Scan failures are logged and retried on the next tick; a
// failed pass never stops the loop.
func RunPresenceScan(
	ctx context.Context,
	presence *app.PresenceManager,
	interval time.Duration,
) {
	l := log.FromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		flagged, err := presence.Scan(ctx)
		if err != nil {
			l.Errorf("presence scan failed: %s", err)
		} else if flagged > 0 {
			l.Infof("presence scan flagged %d devices missing",
				flagged)
		}
	}
}
