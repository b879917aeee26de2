// SPDX-License-Identifier: BSD-3-Clause

package profilemgr

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

type fromToRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type profileRenameResponse struct {
	Names []string `json:"names"`
}

type activeNameRequest struct {
	Name string `json:"name"`
}

type activeNameResponse struct {
	Name string `json:"name"`
}

func (m *ProfileMgr) handleAdd(ctx context.Context, req micro.Request) {
	var r profileAddRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if err := m.store.AddGlobalProfile(r.Name, r.JSON); err != nil {
		ipc.RespondWithError(ctx, req, err, "adding global profile")
		return
	}
	respondEmpty(ctx, req, m.logger)
}

func (m *ProfileMgr) handleGet(ctx context.Context, req micro.Request) {
	var r profileGetRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	profile, err := m.store.GetGlobalProfile(r.Name)
	if err != nil {
		ipc.RespondWithError(ctx, req, err, "getting global profile")
		return
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrMarshalingFailed, err.Error())
		return
	}
	respond(ctx, req, m.logger, profileGetResponse{JSON: raw})
}

func (m *ProfileMgr) handleList(ctx context.Context, req micro.Request) {
	names, err := m.store.ListGlobalProfiles()
	if err != nil {
		ipc.RespondWithError(ctx, req, err, "listing global profiles")
		return
	}
	respond(ctx, req, m.logger, profileListResponse{Names: names})
}

func (m *ProfileMgr) handleRemove(ctx context.Context, req micro.Request) {
	var r profileRemoveRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if err := m.store.RemoveGlobalProfile(r.Name); err != nil {
		ipc.RespondWithError(ctx, req, err, "removing global profile")
		return
	}
	respondEmpty(ctx, req, m.logger)
}

// handleRename renames a global profile. If the renamed profile was
// active, the store repoints the active pointer as part of the rename;
// this handler additionally requests a reload.
func (m *ProfileMgr) handleRename(ctx context.Context, req micro.Request) {
	var r fromToRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}

	activeBefore, _ := m.store.GetActiveProfileName()
	wasActive := activeBefore == r.From

	if err := m.store.RenameGlobalProfile(r.From, r.To); err != nil {
		ipc.RespondWithError(ctx, req, err, "renaming global profile")
		return
	}

	if wasActive {
		m.reload.TriggerReload()
	}

	names, err := m.store.ListGlobalProfiles()
	if err != nil {
		ipc.RespondWithError(ctx, req, err, "listing global profiles after rename")
		return
	}
	respond(ctx, req, m.logger, profileRenameResponse{Names: names})
}

func (m *ProfileMgr) handleCopy(ctx context.Context, req micro.Request) {
	var r fromToRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if err := m.store.CopyGlobalProfile(r.From, r.To); err != nil {
		ipc.RespondWithError(ctx, req, err, "copying global profile")
		return
	}
	respondEmpty(ctx, req, m.logger)
}

// handleSetActive activates a different global profile and triggers a
// reload.
func (m *ProfileMgr) handleSetActive(ctx context.Context, req micro.Request) {
	var r activeNameRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if err := m.store.SetActiveProfileName(r.Name); err != nil {
		ipc.RespondWithError(ctx, req, err, "setting active profile")
		return
	}
	m.reload.TriggerReload()
	respondEmpty(ctx, req, m.logger)
}

func (m *ProfileMgr) handleGetActive(ctx context.Context, req micro.Request) {
	name, err := m.store.GetActiveProfileName()
	if err != nil {
		ipc.RespondWithError(ctx, req, err, "getting active profile")
		return
	}
	respond(ctx, req, m.logger, activeNameResponse{Name: name})
}

func (m *ProfileMgr) handleReload(ctx context.Context, req micro.Request) {
	m.reload.TriggerReload()
	respondEmpty(ctx, req, m.logger)
}

type fanCountResponse struct {
	Count int `json:"count"`
}

// handleFanCount implements the Profiles interface's get_number_of_fans.
func (m *ProfileMgr) handleFanCount(ctx context.Context, req micro.Request) {
	respond(ctx, req, m.logger, fanCountResponse{Count: m.numFans})
}

type ledDevicesResponse struct {
	Devices []model.LedDeviceInfo `json:"devices"`
}

// handleLedDevices implements the Profiles interface's get_led_devices.
func (m *ProfileMgr) handleLedDevices(ctx context.Context, req micro.Request) {
	respond(ctx, req, m.logger, ledDevicesResponse{Devices: m.ledDevices})
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
