// SPDX-License-Identifier: BSD-3-Clause

package backlightmgr

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go/micro"
	"github.com/tuxedocomputers/tailord/pkg/ipc"
)

type setRequest struct {
	Value int `json:"value"`
}

type getResponse struct {
	Value int `json:"value"`
	Max   int `json:"max"`
}

func (m *BacklightMgr) handleSet(ctx context.Context, req micro.Request) {
	var r setRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}

	if err := m.backlight.SetBrightness(ctx, r.Value); err != nil {
		ipc.RespondWithError(ctx, req, err, "setting backlight brightness")
		return
	}

	respondEmpty(ctx, req, m.logger)
}

func (m *BacklightMgr) handleGet(ctx context.Context, req micro.Request) {
	value, err := m.backlight.Brightness(ctx)
	if err != nil {
		ipc.RespondWithError(ctx, req, err, "reading backlight brightness")
		return
	}
	max, err := m.backlight.MaxBrightness(ctx)
	if err != nil {
		ipc.RespondWithError(ctx, req, err, "reading backlight max brightness")
		return
	}

	respond(ctx, req, m.logger, getResponse{Value: value, Max: max})
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
