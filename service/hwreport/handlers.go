// SPDX-License-Identifier: BSD-3-Clause

package hwreport

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go/micro"
	"github.com/tuxedocomputers/tailord/internal/model"
	"github.com/tuxedocomputers/tailord/pkg/ipc"
)

type fanSnapshot struct {
	Index  int    `json:"index"`
	TempC  uint8  `json:"temp_c"`
	FanPct uint8  `json:"fan_pct"`
	Error  string `json:"error,omitempty"`
}

type ledSnapshot struct {
	model.LedDeviceInfo
	Color model.Color `json:"color"`
	Error string      `json:"error,omitempty"`
}

type backlightSnapshot struct {
	Value int    `json:"value"`
	Max   int    `json:"max"`
	Error string `json:"error,omitempty"`
}

type snapshotResponse struct {
	ActiveProfile string             `json:"active_profile"`
	Fans          []fanSnapshot      `json:"fans"`
	Leds          []ledSnapshot      `json:"leds"`
	Backlight     *backlightSnapshot `json:"backlight,omitempty"`
}

// handleSnapshot assembles a best-effort snapshot of live hardware state.
// Every reading is independent: a failure on one fan, zone, or the
// backlight is recorded inline rather than failing the whole response,
// matching this service's "never a dependency of the activation
// coordinator" contract (doc.go) -- a broken sensor must not hide the
// rest of the report.
func (m *HWReport) handleSnapshot(ctx context.Context, req micro.Request) {
	resp := snapshotResponse{}

	if name, err := m.store.GetActiveProfileName(); err == nil {
		resp.ActiveProfile = name
	}

	if m.fans != nil {
		n := m.fans.NumFans()
		resp.Fans = make([]fanSnapshot, n)
		for i := 0; i < n; i++ {
			snap := fanSnapshot{Index: i}
			temp, err := m.fans.FanTemperature(ctx, i)
			if err != nil {
				snap.Error = err.Error()
			} else {
				snap.TempC = temp
			}
			speed, err := m.fans.FanSpeedPercent(ctx, i)
			if err != nil {
				if snap.Error == "" {
					snap.Error = err.Error()
				}
			} else {
				snap.FanPct = speed
			}
			resp.Fans[i] = snap
		}
	}

	resp.Leds = make([]ledSnapshot, len(m.leds))
	for i, led := range m.leds {
		snap := ledSnapshot{LedDeviceInfo: led.Info()}
		color, err := led.Color(ctx)
		if err != nil {
			snap.Error = err.Error()
		} else {
			snap.Color = color
		}
		resp.Leds[i] = snap
	}

	if m.backlight != nil {
		snap := &backlightSnapshot{}
		value, err := m.backlight.Brightness(ctx)
		if err != nil {
			snap.Error = err.Error()
		} else {
			snap.Value = value
		}
		max, err := m.backlight.MaxBrightness(ctx)
		if err != nil {
			if snap.Error == "" {
				snap.Error = err.Error()
			}
		} else {
			snap.Max = max
		}
		resp.Backlight = snap
	}

	respond(ctx, req, m.logger, resp)
}

func respond(ctx context.Context, req micro.Request, logger *slog.Logger, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrMarshalingFailed, err.Error())
		return
	}
	if err := req.Respond(data); err != nil {
		logger.ErrorContext(ctx, "failed sending response", "subject", req.Subject(), "error", err)
	}
}
