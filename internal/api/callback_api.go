package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	"github.com/tinywideclouds/go-microservice-base/pkg/response"

	"github.com/tinywideclouds/go-pushbridge-service/internal/relay"
	"github.com/tinywideclouds/go-pushbridge-service/pkg/bridge"
)

// CallbackAPI lets an authenticated installation relay push lifecycle
// callbacks over HTTP instead of through the event topic.
type CallbackAPI struct {
	Listener bridge.PushListener
	Logger   *slog.Logger
}

func NewCallbackAPI(listener bridge.PushListener, logger *slog.Logger) *CallbackAPI {
	return &CallbackAPI{
		Listener: listener,
		Logger:   logger,
	}
}

type TokenCallbackRequest struct {
	Token string `json:"token"`
}

// MessageCallbackRequest carries the push payload. A missing "data" field
// means the provider delivered no payload.
type MessageCallbackRequest struct {
	Data *map[string]string `json:"data"`
}

func (api *CallbackAPI) TokenCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := middleware.GetUserHandleFromContext(ctx)
	if !ok {
		response.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req TokenCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	err := api.Listener.OnTokenIssued(ctx, bridge.DeviceToken(req.Token))
	if errors.Is(err, relay.ErrInvalidToken) {
		api.Logger.Warn("TokenCallback: Validation failed", "user", userID, "reason", "empty token")
		response.WriteJSONError(w, http.StatusBadRequest, "missing token")
		return
	}
	if errors.Is(err, bridge.ErrTokenRejected) {
		api.Logger.Warn("TokenCallback: token rejected", "user", userID, "err", err)
		response.WriteJSONError(w, http.StatusUnprocessableEntity, "token rejected")
		return
	}
	if err != nil {
		api.Logger.Error("TokenCallback: forwarding failed", "user", userID, "err", err)
		response.WriteJSONError(w, http.StatusBadGateway, "analytics registration failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (api *CallbackAPI) MessageCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := middleware.GetUserHandleFromContext(ctx)
	if !ok {
		response.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req MessageCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Logger.Error("MessageCallback: JSON Decode failed", "err", err)
		response.WriteJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	msg := bridge.AbsentMessage()
	if req.Data != nil {
		msg = bridge.NewPushMessage(*req.Data)
	}

	if err := api.Listener.OnMessageReceived(ctx, msg); err != nil {
		api.Logger.Error("MessageCallback: forwarding failed", "user", userID, "err", err)
		response.WriteJSONError(w, http.StatusBadGateway, "analytics ingestion failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
