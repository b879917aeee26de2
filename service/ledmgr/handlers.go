// SPDX-License-Identifier: BSD-3-Clause

package ledmgr

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go/micro"
	"github.com/tuxedocomputers/tailord/internal/model"
	"github.com/tuxedocomputers/tailord/pkg/ipc"
)

type profileAddRequest struct {
	Name string          `json:"name"`
	JSON json.RawMessage `json:"json"`
}

type profileGetRequest struct {
	Name string `json:"name"`
}

type profileGetResponse struct {
	JSON json.RawMessage `json:"json"`
}

type profileListResponse struct {
	Names []string `json:"names"`
}

type profileRemoveRequest struct {
	Name string `json:"name"`
}

type profileRenameRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type profileRenameResponse struct {
	Names []string `json:"names"`
}

type overrideRequest struct {
	DeviceName string      `json:"device_name"`
	Function   string      `json:"function"`
	Color      model.Color `json:"color"`
}

type devicesResponse struct {
	Devices []model.LedDeviceInfo `json:"devices"`
}

func (m *LEDMgr) handleProfileAdd(ctx context.Context, req micro.Request) {
	var r profileAddRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if err := m.store.AddLedProfile(r.Name, r.JSON); err != nil {
		ipc.RespondWithError(ctx, req, err, "adding LED profile")
		return
	}
	m.triggerReloadIfActive(ctx, r.Name)
	respondEmpty(ctx, req, m.logger)
}

func (m *LEDMgr) handleProfileGet(ctx context.Context, req micro.Request) {
	var r profileGetRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	profile, err := m.store.GetLedProfile(r.Name)
	if err != nil {
		ipc.RespondWithError(ctx, req, err, "getting LED profile")
		return
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrMarshalingFailed, err.Error())
		return
	}
	respond(ctx, req, m.logger, profileGetResponse{JSON: raw})
}

func (m *LEDMgr) handleProfileList(ctx context.Context, req micro.Request) {
	names, err := m.store.ListLedProfiles()
	if err != nil {
		ipc.RespondWithError(ctx, req, err, "listing LED profiles")
		return
	}
	respond(ctx, req, m.logger, profileListResponse{Names: names})
}

func (m *LEDMgr) handleProfileRemove(ctx context.Context, req micro.Request) {
	var r profileRemoveRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if err := m.store.RemoveLedProfile(r.Name); err != nil {
		ipc.RespondWithError(ctx, req, err, "removing LED profile")
		return
	}
	m.triggerReloadIfActive(ctx, r.Name)
	respondEmpty(ctx, req, m.logger)
}

func (m *LEDMgr) handleProfileRename(ctx context.Context, req micro.Request) {
	var r profileRenameRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	names, err := m.store.RenameLedProfile(r.From, r.To)
	if err != nil {
		ipc.RespondWithError(ctx, req, err, "renaming LED profile")
		return
	}
	m.triggerReloadIfActive(ctx, r.To)
	respond(ctx, req, m.logger, profileRenameResponse{Names: names})
}

// handleOverride forwards a direct color write to the addressed zone's
// ColorIn channel with a try-send, dropping the value if a previous
// override is still pending delivery -- the same "new intent supersedes
// pending" strategy fanmgr uses for fan overrides.
func (m *LEDMgr) handleOverride(ctx context.Context, req micro.Request) {
	var r overrideRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}

	info := model.LedDeviceInfo{DeviceName: r.DeviceName, Function: r.Function}
	handle, ok := m.zones[info.DeviceID()]
	if !ok {
		ipc.RespondWithError(ctx, req, ErrDeviceNotFound, info.DeviceID())
		return
	}

	select {
	case handle.ColorIn <- r.Color:
	default:
		m.logger.DebugContext(ctx, "dropped LED override, previous override still pending", "zone", info.DeviceID())
	}

	respondEmpty(ctx, req, m.logger)
}

func (m *LEDMgr) handleDevices(ctx context.Context, req micro.Request) {
	respond(ctx, req, m.logger, devicesResponse{Devices: m.infos})
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
