// SPDX-License-Identifier: BSD-3-Clause

package fanmgr

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go/micro"
	"github.com/tuxedocomputers/tailord/internal/store"
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
	FanIdx int   `json:"fan_idx"`
	Speed  uint8 `json:"speed"`
}

type countResponse struct {
	Count int `json:"count"`
}

func (m *FanMgr) handleProfileAdd(ctx context.Context, req micro.Request) {
	var r profileAddRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if err := m.store.AddFanProfile(r.Name, r.JSON); err != nil {
		ipc.RespondWithError(ctx, req, err, "adding fan profile")
		return
	}
	m.triggerReloadIfActive(ctx, r.Name)
	respondEmpty(ctx, req, m.logger)
}

func (m *FanMgr) handleProfileGet(ctx context.Context, req micro.Request) {
	var r profileGetRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	profile, err := m.store.GetFanProfile(r.Name)
	if err != nil {
		ipc.RespondWithError(ctx, req, err, "getting fan profile")
		return
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrMarshalingFailed, err.Error())
		return
	}
	respond(ctx, req, m.logger, profileGetResponse{JSON: raw})
}

func (m *FanMgr) handleProfileList(ctx context.Context, req micro.Request) {
	names, err := m.store.ListFanProfiles()
	if err != nil {
		ipc.RespondWithError(ctx, req, err, "listing fan profiles")
		return
	}
	respond(ctx, req, m.logger, profileListResponse{Names: names})
}

func (m *FanMgr) handleProfileRemove(ctx context.Context, req micro.Request) {
	var r profileRemoveRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if err := m.store.RemoveFanProfile(r.Name); err != nil {
		ipc.RespondWithError(ctx, req, err, "removing fan profile")
		return
	}
	m.triggerReloadIfActive(ctx, r.Name)
	respondEmpty(ctx, req, m.logger)
}

func (m *FanMgr) handleProfileRename(ctx context.Context, req micro.Request) {
	var r profileRenameRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	names, err := m.store.RenameFanProfile(r.From, r.To)
	if err != nil {
		ipc.RespondWithError(ctx, req, err, "renaming fan profile")
		return
	}
	m.triggerReloadIfActive(ctx, r.To)
	respond(ctx, req, m.logger, profileRenameResponse{Names: names})
}

// handleOverride forwards a manual fan speed to the addressed fan's
// OverrideIn channel with a try-send, dropping the value if a previous
// override is still pending delivery: new intent supersedes pending for
// override channels, as distinct from the coordinator's blocking profile
// sends.
func (m *FanMgr) handleOverride(ctx context.Context, req micro.Request) {
	var r overrideRequest
	if err := json.Unmarshal(req.Data(), &r); err != nil {
		ipc.RespondWithError(ctx, req, ipc.ErrUnmarshalingFailed, err.Error())
		return
	}
	if r.FanIdx < 0 || r.FanIdx >= len(m.fans) {
		ipc.RespondWithError(ctx, req, ErrFanIndexOutOfRange, "fan_idx")
		return
	}
	if r.Speed > 100 {
		ipc.RespondWithError(ctx, req, store.ErrValidation, "speed must be 0-100")
		return
	}

	select {
	case m.fans[r.FanIdx].OverrideIn <- r.Speed:
	default:
		m.logger.DebugContext(ctx, "dropped fan override, previous override still pending", "fan_idx", r.FanIdx)
	}

	respondEmpty(ctx, req, m.logger)
}

func (m *FanMgr) handleCount(ctx context.Context, req micro.Request) {
	respond(ctx, req, m.logger, countResponse{Count: len(m.fans)})
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
