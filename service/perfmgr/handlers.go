// SPDX-License-Identifier: BSD-3-Clause

package perfmgr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/nats-io/nats.go/micro"
	"github.com/tuxedocomputers/tailord/pkg/hwdevice"
	"github.com/tuxedocomputers/tailord/pkg/ipc"
)

type setRequest struct {
	Name string `json:"name"`
}

type getResponse struct {
	Available []string `json:"available"`
}

func (m *PerfMgr) handleSet(ctx context.Context, req micro.Request) {
	var r setRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}

	if err := m.fan.SetODMPerformanceProfile(ctx, r.Name); err != nil {
		ipc.RespondWithError(ctx, req, mapDeviceErr(err), "setting performance profile")
		return
	}

	respondEmpty(ctx, req, m.logger)
}

func (m *PerfMgr) handleGet(ctx context.Context, req micro.Request) {
	available, err := m.fan.AvailableODMPerformanceProfiles(ctx)
	if err != nil {
		ipc.RespondWithError(ctx, req, mapDeviceErr(err), "listing performance profiles")
		return
	}

	respond(ctx, req, m.logger, getResponse{Available: available})
}

func mapDeviceErr(err error) error {
	if errors.Is(err, hwdevice.ErrDeviceUnavailable) {
		return ipc.ErrDeviceUnavailable
	}
	return err
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

func respondEmpty(ctx context.Context, req micro.Request, logger *slog.Logger) {
	if err := req.Respond([]byte("{}")); err != nil {
		logger.ErrorContext(ctx, "failed sending response", "subject", req.Subject(), "error", err)
	}
}
